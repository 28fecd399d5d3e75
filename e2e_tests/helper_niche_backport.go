// Copyright 2025 Aviator Technologies, Inc.
// SPDX-License-Identifier: MIT

package e2e_tests

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	nichebackport "github.com/aviator-co/niche-backport"
	"github.com/kr/text"
	"github.com/stretchr/testify/require"
)

var nicheBackportCmdPath string

func init() {
	cmd := exec.Command("go", "build", "../cmd/niche-backport")
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		panic(err)
	}
	var err error
	nicheBackportCmdPath, err = filepath.Abs("./niche-backport")
	if err != nil {
		panic(err)
	}
}

type NicheBackportOutput struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Result decodes the JSON written to stdout.
func (o NicheBackportOutput) Result(t *testing.T) BackportResult {
	t.Helper()
	var result BackportResult
	require.NoError(t, json.Unmarshal([]byte(o.Stdout), &result), "invalid output: %s", o.Stdout)
	return result
}

type BackportResult struct {
	nichebackport.Result
	Error string `json:"error"`
}

// CIEnv is the environment of a GitHub Actions job running on a pull_request event.
type CIEnv struct {
	EventPath  string
	OutputPath string
	Token      string
	APIURL     string
	Home       string
}

// NewCIEnv writes event to a file and prepares an empty step output file and HOME.
func NewCIEnv(t *testing.T, event any) *CIEnv {
	t.Helper()
	dir := t.TempDir()
	bs, err := json.Marshal(event)
	require.NoError(t, err)
	env := &CIEnv{
		EventPath:  filepath.Join(dir, "event.json"),
		OutputPath: filepath.Join(dir, "output"),
		Token:      "dummy-token",
		Home:       filepath.Join(dir, "home"),
	}
	require.NoError(t, os.WriteFile(env.EventPath, bs, 0o600))
	require.NoError(t, os.WriteFile(env.OutputPath, nil, 0o600))
	require.NoError(t, os.MkdirAll(env.Home, 0o755))
	return env
}

func (e *CIEnv) environ() []string {
	env := []string{
		"CI=true",
		"GITHUB_EVENT_PATH=" + e.EventPath,
		"GITHUB_OUTPUT=" + e.OutputPath,
		"GITHUB_TOKEN=" + e.Token,
		"HOME=" + e.Home,
		"XDG_CONFIG_HOME=" + filepath.Join(e.Home, ".config"),
		"GIT_CONFIG_NOSYSTEM=1",
	}
	if e.APIURL != "" {
		env = append(env, "GITHUB_API_URL="+e.APIURL)
	}
	return env
}

func (e *CIEnv) ReadOutputs(t *testing.T) string {
	t.Helper()
	bs, err := os.ReadFile(e.OutputPath)
	require.NoError(t, err)
	return string(bs)
}

func cmdInternal(t *testing.T, exe string, env []string, args ...string) NicheBackportOutput {
	t.Helper()
	cmd := exec.Command(exe, args...)
	cmd.Env = append(os.Environ(), env...)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	var exitError *exec.ExitError
	if err != nil && !errors.As(err, &exitError) {
		t.Fatal(err)
	}

	output := NicheBackportOutput{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	t.Logf("Running niche-backport\n"+
		"args: %v\n"+
		"exit code: %v\n"+
		"stdout:\n"+
		"%s"+
		"stderr:\n"+
		"%s",
		args,
		cmd.ProcessState.ExitCode(),
		text.Indent(stdout.String(), "  "),
		text.Indent(stderr.String(), "  "),
	)
	return output
}

func NicheBackport(t *testing.T, env *CIEnv, args ...string) NicheBackportOutput {
	t.Helper()
	var environ []string
	if env != nil {
		environ = env.environ()
	}
	return cmdInternal(t, nicheBackportCmdPath, environ, args...)
}

func RequireNicheBackport(t *testing.T, env *CIEnv, args ...string) NicheBackportOutput {
	t.Helper()
	output := NicheBackport(t, env, args...)
	require.Equal(t, 0, output.ExitCode, "niche-backport %s: exited with %v", args, output.ExitCode)
	return output
}

// PullRequestEvent is a merged pull_request event of the repository at repoDir.
func PullRequestEvent(repoDir string, number int, mergeCommitSHA string, labels ...string) map[string]any {
	var ls []map[string]any
	for _, l := range labels {
		ls = append(ls, map[string]any{"name": l})
	}
	return map[string]any{
		"action": "closed",
		"pull_request": map[string]any{
			"number":           number,
			"merged":           true,
			"merge_commit_sha": mergeCommitSHA,
			"title":            "Change the greeting",
			"body":             "It was too loud.\n\nFixes #1.",
			"base":             map[string]any{"ref": "main"},
			"labels":           ls,
		},
		"repository": map[string]any{
			"name":      "hello",
			"owner":     map[string]any{"login": "octo"},
			"clone_url": "file://" + repoDir,
		},
	}
}
