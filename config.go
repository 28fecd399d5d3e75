// Copyright 2025 Aviator Technologies, Inc.
// SPDX-License-Identifier: MIT

package nichebackport

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	StrategyRemoteTree      = "remote-tree"
	StrategyLocalCherryPick = "local-cherry-pick"

	DefaultGitUserName  = "github-actions[bot]"
	DefaultGitUserEmail = "github-actions[bot]@users.noreply.github.com"
)

// DefaultLabels are added to every backport pull request on top of the original labels.
var DefaultLabels = []string{"backport", "bot"}

// Config is everything a backport run reads from its environment. It is built once by the
// command and passed down explicitly.
type Config struct {
	// RunningInCI is true when the process runs in a CI job. Nothing is done otherwise.
	RunningInCI bool
	// EventPath is the path to the pull_request webhook payload (GITHUB_EVENT_PATH).
	EventPath string
	// OutputPath is the step output file (GITHUB_OUTPUT).
	OutputPath string
	// Token is the GitHub access token (GITHUB_TOKEN).
	Token string
	// APIURL is the GitHub REST API root. Empty means api.github.com.
	APIURL string

	// BaseBranches are doublestar patterns that the original pull request's base branch must
	// match. Empty means any base branch is eligible.
	BaseBranches []string
	// Labels are added to the backport pull request.
	Labels []string
	// TitleTemplate and BodyTemplate are text/template sources for the backport pull request.
	TitleTemplate string
	BodyTemplate  string

	Git GitConfig
}

type GitConfig struct {
	// RecordOrigin passes -x to git cherry-pick.
	RecordOrigin bool
	// Mainline is passed as --mainline to git cherry-pick when the picked commit is a merge
	// commit. Zero disables it.
	Mainline int
	// WorkDir is where the repository is cloned. Empty means a new temporary directory.
	WorkDir string
	// ConfigGlobal writes the committer identity with git config --global.
	ConfigGlobal bool
	UserName     string
	UserEmail    string
}

// DefaultConfig returns the defaults of a strategy. The remote tree strategy only accepts pull
// requests merged into main, the local cherry-pick strategy accepts any base branch.
func DefaultConfig(strategy string) Config {
	cfg := Config{
		Labels:        append([]string(nil), DefaultLabels...),
		TitleTemplate: DefaultTitleTemplate,
		BodyTemplate:  DefaultBodyTemplate,
		Git: GitConfig{
			RecordOrigin: true,
			ConfigGlobal: true,
			UserName:     DefaultGitUserName,
			UserEmail:    DefaultGitUserEmail,
		},
	}
	if strategy == StrategyRemoteTree {
		cfg.BaseBranches = []string{"main"}
	}
	return cfg
}

// ApplyEnv reads the CI provided environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	c.RunningInCI = RunningInCI(getenv)
	if v := getenv("GITHUB_EVENT_PATH"); v != "" {
		c.EventPath = v
	}
	if v := getenv("GITHUB_OUTPUT"); v != "" {
		c.OutputPath = v
	}
	if v := getenv("GITHUB_TOKEN"); v != "" {
		c.Token = v
	}
	if v := getenv("GITHUB_API_URL"); v != "" {
		c.APIURL = v
	}
}

// RunningInCI reports whether the environment looks like a CI job.
func RunningInCI(getenv func(string) string) bool {
	for _, key := range []string{"CI", "GITHUB_ACTIONS"} {
		if b, err := strconv.ParseBool(strings.TrimSpace(getenv(key))); err == nil && b {
			return true
		}
	}
	return false
}

type fileConfig struct {
	APIURL        string              `yaml:"apiURL"`
	Labels        []string            `yaml:"labels"`
	TitleTemplate string              `yaml:"titleTemplate"`
	BodyTemplate  string              `yaml:"bodyTemplate"`
	Backport      *strategyFileConfig `yaml:"backport"`
	CherryPick    *strategyFileConfig `yaml:"cherryPick"`
}

type strategyFileConfig struct {
	BaseBranches []string `yaml:"baseBranches"`
	RecordOrigin *bool    `yaml:"recordOrigin"`
	Mainline     *int     `yaml:"mainline"`
	WorkDir      string   `yaml:"workDir"`
	ConfigGlobal *bool    `yaml:"gitConfigGlobal"`
	UserName     string   `yaml:"gitUserName"`
	UserEmail    string   `yaml:"gitUserEmail"`
}

// ApplyFile overlays a YAML configuration file. Only the section of the given strategy is read
// on top of the shared keys.
func (c *Config) ApplyFile(path, strategy string) error {
	bs, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read the config file")
	}
	var fc fileConfig
	if err := yaml.Unmarshal(bs, &fc); err != nil {
		return errors.Wrapf(err, "invalid config file %s", path)
	}
	if fc.APIURL != "" {
		c.APIURL = fc.APIURL
	}
	if fc.Labels != nil {
		c.Labels = fc.Labels
	}
	if fc.TitleTemplate != "" {
		c.TitleTemplate = fc.TitleTemplate
	}
	if fc.BodyTemplate != "" {
		c.BodyTemplate = fc.BodyTemplate
	}

	sc := fc.Backport
	if strategy == StrategyLocalCherryPick {
		sc = fc.CherryPick
	}
	if sc == nil {
		return nil
	}
	if sc.BaseBranches != nil {
		c.BaseBranches = sc.BaseBranches
	}
	if sc.RecordOrigin != nil {
		c.Git.RecordOrigin = *sc.RecordOrigin
	}
	if sc.Mainline != nil {
		c.Git.Mainline = *sc.Mainline
	}
	if sc.WorkDir != "" {
		c.Git.WorkDir = sc.WorkDir
	}
	if sc.ConfigGlobal != nil {
		c.Git.ConfigGlobal = *sc.ConfigGlobal
	}
	if sc.UserName != "" {
		c.Git.UserName = sc.UserName
	}
	if sc.UserEmail != "" {
		c.Git.UserEmail = sc.UserEmail
	}
	return nil
}
