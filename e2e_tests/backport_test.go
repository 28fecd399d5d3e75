// Copyright 2025 Aviator Technologies, Inc.
// SPDX-License-Identifier: MIT

package e2e_tests

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	nichebackport "github.com/aviator-co/niche-backport"
	"github.com/stretchr/testify/require"
)

func TestBackport(t *testing.T) {
	repo, merged := setupReleaseBranch(t)
	github := NewFakeGitHub(t, repo)
	env := NewCIEnv(t, PullRequestEvent(repo.RepoDir, 42, merged, "bug", "backport/release-3"))
	env.APIURL = github.URL

	output := RequireNicheBackport(t, env, "backport")
	result := output.Result(t)
	require.Empty(t, result.Error)
	require.Equal(t, nichebackport.StrategyRemoteTree, result.Strategy)
	require.Equal(t, "refs/backport/release-3/backport-42-to-release-3", result.Ref)
	require.Equal(t, 100, result.PullRequestNumber)

	backport := repo.RevParse(t, result.Ref).String()
	require.Equal(t, result.CommitHash, backport)
	require.Equal(t, repo.RevParse(t, "release-3").String(), repo.RevParse(t, backport+"~1").String())
	// The tree of the merge commit is reused as is, so the unrelated change on main comes along.
	require.Equal(t, repo.RevParse(t, merged+"^{tree}"), repo.RevParse(t, backport+"^{tree}"))
	require.Equal(t, "Change the greeting (#42)", strings.TrimSpace(repo.Git(t, "log", "-1", "--format=%B", backport)))

	require.Equal(t, []FakePullRequest{{
		Number: 100,
		Title:  "[Backport release-3] Change the greeting",
		Body:   "Backport " + merged + " from #42.\n\n___\n\nIt was too loud.\n\nFixes #1.",
		Base:   "release-3",
		Head:   "backport/release-3/backport-42-to-release-3",
		Labels: []string{"bug", "backport", "bot"},
	}}, github.PullRequests())
}

func TestBackport_MissingTargetBranch(t *testing.T) {
	repo, merged := setupReleaseBranch(t)
	github := NewFakeGitHub(t, repo)
	env := NewCIEnv(t, PullRequestEvent(repo.RepoDir, 42, merged, "backport/release-9"))
	env.APIURL = github.URL

	output := NicheBackport(t, env, "backport")
	require.NotEqual(t, 0, output.ExitCode)
	require.Contains(t, output.Result(t).Error, `target branch "release-9" does not exist or cannot be accessed`)
	require.Empty(t, github.PullRequests())
}

func TestBackport_RefAlreadyExists(t *testing.T) {
	repo, merged := setupReleaseBranch(t)
	repo.Git(t, "update-ref", "refs/backport/release-3/backport-42-to-release-3", "release-3")
	github := NewFakeGitHub(t, repo)
	env := NewCIEnv(t, PullRequestEvent(repo.RepoDir, 42, merged, "backport/release-3"))
	env.APIURL = github.URL

	output := NicheBackport(t, env, "backport")
	require.NotEqual(t, 0, output.ExitCode)
	result := output.Result(t)
	require.Contains(t, result.Error, `failed to push backport commit to "backport/release-3/backport-42-to-release-3"`)
	// The commit was created before the ref failed.
	require.NotEmpty(t, result.CommitHash)
	require.Empty(t, github.PullRequests())
}

func TestBackport_BaseBranch(t *testing.T) {
	repo, merged := setupReleaseBranch(t)
	github := NewFakeGitHub(t, repo)
	event := PullRequestEvent(repo.RepoDir, 42, merged, "backport/release-3")
	event["pull_request"].(map[string]any)["base"] = map[string]any{"ref": "develop"}
	env := NewCIEnv(t, event)
	env.APIURL = github.URL

	result := RequireNicheBackport(t, env, "backport").Result(t)
	require.True(t, result.Skipped)
	require.Equal(t, nichebackport.SkipBaseBranch, result.SkipReason)

	result = RequireNicheBackport(t, env, "backport", "--base-branch", "main,develop").Result(t)
	require.False(t, result.Skipped)
	require.Len(t, github.PullRequests(), 1)
}

func TestBackport_ConfigFile(t *testing.T) {
	repo, merged := setupReleaseBranch(t)
	github := NewFakeGitHub(t, repo)
	env := NewCIEnv(t, PullRequestEvent(repo.RepoDir, 42, merged, "backport/release-3"))
	env.APIURL = github.URL

	config := filepath.Join(t.TempDir(), "backport.yaml")
	require.NoError(t, os.WriteFile(config, []byte(`
labels: [automerge]
titleTemplate: "{{ .Title }} ({{ .Target | upper }})"
`), 0o600))

	outputFile := filepath.Join(t.TempDir(), "result.json")
	RequireNicheBackport(t, env, "backport", "--config", config, "--output-file", outputFile)
	bs, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	require.Contains(t, string(bs), `"pullRequestNumber": 100`)

	prs := github.PullRequests()
	require.Len(t, prs, 1)
	require.Equal(t, "Change the greeting (RELEASE-3)", prs[0].Title)
	require.Equal(t, []string{"automerge"}, prs[0].Labels)
}
