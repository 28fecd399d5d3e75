// Copyright 2025 Aviator Technologies, Inc.
// SPDX-License-Identifier: MIT

package e2e_tests

import (
	"encoding/json"
	"testing"

	nichebackport "github.com/aviator-co/niche-backport"
	"github.com/stretchr/testify/require"
)

func TestLsRefs(t *testing.T) {
	repo, _ := setupReleaseBranch(t)

	output := RequireNicheBackport(t, nil, "ls-refs", "--repo-url", "file://"+repo.RepoDir, "--ref-prefixes", "refs/heads/release-")
	var result struct {
		Refs []*nichebackport.RefInfo `json:"refs"`
	}
	require.NoError(t, json.Unmarshal([]byte(output.Stdout), &result))
	require.Equal(t, []*nichebackport.RefInfo{{
		Name: "refs/heads/release-3",
		Hash: repo.RevParse(t, "release-3").String(),
	}}, result.Refs)
}
