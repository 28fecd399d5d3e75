// Copyright 2025 Aviator Technologies, Inc.
// SPDX-License-Identifier: MIT

package nichebackport

import (
	"context"
	"fmt"

	"github.com/aviator-co/niche-backport/debug"
	"github.com/bmatcuk/doublestar"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotInCI is returned when the command runs outside of a CI job.
	ErrNotInCI = errors.New("this command is meant to be run in CI, not locally")
	// ErrEnvironment is returned when a required environment variable or input is missing.
	ErrEnvironment = errors.New("invalid environment")
	// ErrRemoteLookup is returned when a branch, ref, or commit cannot be resolved on the remote.
	ErrRemoteLookup = errors.New("remote lookup failed")
	// ErrRemoteMutation is returned when creating a commit, ref, pull request, or branch fails.
	// Objects created before the failure are left in place.
	ErrRemoteMutation = errors.New("remote update failed")
	// ErrCherryPickConflict is returned when git cherry-pick fails.
	ErrCherryPickConflict = errors.New("cherry-pick failed")
)

// kindError tags err with one of the sentinel errors above without changing its message.
type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string   { return e.err.Error() }
func (e *kindError) Unwrap() []error { return []error{e.kind, e.err} }

func withKind(kind, err error) error {
	return &kindError{kind: kind, err: err}
}

type SkipReason string

const (
	SkipNoPullRequest   SkipReason = "no-pull-request"
	SkipNotMerged       SkipReason = "not-merged"
	SkipBaseBranch      SkipReason = "base-branch"
	SkipNoBackportLabel SkipReason = "no-backport-label"
)

// Strategy creates the backport of a request on the remote.
type Strategy interface {
	Name() string
	// Backport runs the strategy. It fills result as it goes so that partially created objects
	// are reported even when an error is returned.
	Backport(ctx context.Context, log *logrus.Entry, req *Request, result *Result) error
}

type Result struct {
	Strategy   string     `json:"strategy"`
	Skipped    bool       `json:"skipped"`
	SkipReason SkipReason `json:"skipReason,omitempty"`
	Request    *Request   `json:"request,omitempty"`

	// Branch is the branch the backport is pushed to.
	Branch string `json:"branch,omitempty"`
	// Ref is the full ref name created on the remote.
	Ref string `json:"ref,omitempty"`
	// CommitHash is the backported commit.
	CommitHash string `json:"commitHash,omitempty"`

	PullRequestNumber int    `json:"pullRequestNumber,omitempty"`
	PullRequestURL    string `json:"pullRequestURL,omitempty"`

	LsRefsDebugInfo *debug.LsRefsDebugInfo `json:"lsRefsDebugInfo,omitempty"`
}

// Run checks that the event describes an eligible merged pull request and hands it to the
// strategy. Ineligible events are not errors; they return a skipped result.
func Run(ctx context.Context, log *logrus.Entry, cfg Config, strategy Strategy) (*Result, error) {
	result := &Result{Strategy: strategy.Name()}
	log = log.WithField("strategy", strategy.Name())

	if !cfg.RunningInCI {
		return result, ErrNotInCI
	}
	if cfg.EventPath == "" {
		return result, withKind(ErrEnvironment, errors.New("GITHUB_EVENT_PATH is not set"))
	}
	event, err := LoadEvent(cfg.EventPath)
	if err != nil {
		return result, withKind(ErrEnvironment, err)
	}

	req, reason, err := checkEligibility(event, cfg.BaseBranches)
	if err != nil {
		return result, withKind(ErrEnvironment, err)
	}
	if reason != "" {
		result.Skipped = true
		result.SkipReason = reason
		log.Info(skipMessage(reason, event))
		return result, nil
	}
	result.Request = req

	log = log.WithFields(logrus.Fields{
		"pr":     req.PRNumber,
		"target": req.TargetBranch,
	})
	if ignored := ignoredBackportLabels(event.PullRequest.Labels); len(ignored) > 0 {
		log.WithField("ignored", ignored).Warn("Multiple backport labels found. Only the first one is used.")
	}
	log.Infof("Backport #%d to target branch: %s", req.PRNumber, req.TargetBranch)

	if err := strategy.Backport(ctx, log, req, result); err != nil {
		return result, err
	}
	return result, nil
}

func checkEligibility(event *Event, baseBranches []string) (*Request, SkipReason, error) {
	pr := event.PullRequest
	if pr == nil {
		return nil, SkipNoPullRequest, nil
	}
	if !pr.Merged || pr.MergeCommitSHA == "" {
		return nil, SkipNotMerged, nil
	}
	ok, err := matchBaseBranch(baseBranches, pr.Base.Ref)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, SkipBaseBranch, nil
	}
	target, ok := FindBackportTarget(pr.Labels)
	if !ok || target == "" {
		return nil, SkipNoBackportLabel, nil
	}
	return newRequest(event, target), "", nil
}

func matchBaseBranch(patterns []string, ref string) (bool, error) {
	if len(patterns) == 0 {
		return true, nil
	}
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, ref)
		if err != nil {
			return false, errors.Wrapf(err, "invalid base branch pattern %q", pattern)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func skipMessage(reason SkipReason, event *Event) string {
	switch reason {
	case SkipNoPullRequest:
		return "No pull_request found. Skipping backport."
	case SkipNotMerged:
		return "For security reasons, this action should only run on merged PRs."
	case SkipBaseBranch:
		return fmt.Sprintf("The PR was merged into %q, which is not an eligible base branch. Skipping backport.", event.PullRequest.Base.Ref)
	case SkipNoBackportLabel:
		return "No backport/<target> label found. Skipping backport."
	}
	return string(reason)
}
