// Copyright 2025 Aviator Technologies, Inc.
// SPDX-License-Identifier: MIT

package nichebackport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestDefaultConfig(t *testing.T) {
	remote := DefaultConfig(StrategyRemoteTree)
	require.Equal(t, []string{"main"}, remote.BaseBranches)
	require.Equal(t, []string{"backport", "bot"}, remote.Labels)

	local := DefaultConfig(StrategyLocalCherryPick)
	require.Empty(t, local.BaseBranches)
	require.True(t, local.Git.RecordOrigin)
	require.True(t, local.Git.ConfigGlobal)
	require.Zero(t, local.Git.Mainline)

	// The defaults must not share the backing array of DefaultLabels.
	remote.Labels[0] = "changed"
	require.Equal(t, "backport", DefaultLabels[0])
}

func TestRunningInCI(t *testing.T) {
	require.True(t, RunningInCI(envMap(map[string]string{"CI": "true"})))
	require.True(t, RunningInCI(envMap(map[string]string{"GITHUB_ACTIONS": "true"})))
	require.True(t, RunningInCI(envMap(map[string]string{"CI": "1"})))
	require.False(t, RunningInCI(envMap(map[string]string{"CI": "false"})))
	require.False(t, RunningInCI(envMap(nil)))
}

func TestConfig_ApplyEnv(t *testing.T) {
	cfg := DefaultConfig(StrategyLocalCherryPick)
	cfg.ApplyEnv(envMap(map[string]string{
		"CI":                "true",
		"GITHUB_EVENT_PATH": "/tmp/event.json",
		"GITHUB_OUTPUT":     "/tmp/output",
		"GITHUB_TOKEN":      "ghs_xxx",
		"GITHUB_API_URL":    "https://ghe.example.com/api/v3",
	}))
	require.True(t, cfg.RunningInCI)
	require.Equal(t, "/tmp/event.json", cfg.EventPath)
	require.Equal(t, "/tmp/output", cfg.OutputPath)
	require.Equal(t, "ghs_xxx", cfg.Token)
	require.Equal(t, "https://ghe.example.com/api/v3", cfg.APIURL)
}

func TestConfig_ApplyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backport.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
labels: [backport]
titleTemplate: "{{ .Title }} ({{ .Target }})"
backport:
  baseBranches: ["main", "release-*"]
cherryPick:
  baseBranches: []
  recordOrigin: false
  mainline: 1
  gitConfigGlobal: false
  gitUserName: release-bot
`), 0o600))

	remote := DefaultConfig(StrategyRemoteTree)
	require.NoError(t, remote.ApplyFile(path, StrategyRemoteTree))
	require.Equal(t, []string{"main", "release-*"}, remote.BaseBranches)
	require.Equal(t, []string{"backport"}, remote.Labels)
	require.Equal(t, "{{ .Title }} ({{ .Target }})", remote.TitleTemplate)
	require.Equal(t, DefaultBodyTemplate, remote.BodyTemplate)
	require.True(t, remote.Git.RecordOrigin)

	local := DefaultConfig(StrategyLocalCherryPick)
	require.NoError(t, local.ApplyFile(path, StrategyLocalCherryPick))
	require.Empty(t, local.BaseBranches)
	require.False(t, local.Git.RecordOrigin)
	require.Equal(t, 1, local.Git.Mainline)
	require.False(t, local.Git.ConfigGlobal)
	require.Equal(t, "release-bot", local.Git.UserName)
	require.Equal(t, DefaultGitUserEmail, local.Git.UserEmail)
}

func TestConfig_ApplyFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backport.yaml")
	require.NoError(t, os.WriteFile(path, []byte("labels: {"), 0o600))
	cfg := DefaultConfig(StrategyRemoteTree)
	require.Error(t, cfg.ApplyFile(path, StrategyRemoteTree))
	require.Error(t, cfg.ApplyFile(filepath.Join(t.TempDir(), "missing.yaml"), StrategyRemoteTree))
}
