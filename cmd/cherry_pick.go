// Copyright 2025 Aviator Technologies, Inc.
// SPDX-License-Identifier: MIT

package cmd

import (
	nichebackport "github.com/aviator-co/niche-backport"
	"github.com/aviator-co/niche-backport/internal/gitcli"
	"github.com/aviator-co/niche-backport/internal/gitrepo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cherryPickArgs struct {
	baseBranches    []string
	recordOrigin    bool
	mainline        int
	workDir         string
	gitConfigGlobal bool
}

var cherryPickCmd = &cobra.Command{
	Use:   "cherry-pick",
	Short: "Cherry-pick a merged pull request onto a new branch and push it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nichebackport.StrategyLocalCherryPick, func(cfg *nichebackport.Config) {
			flags := cmd.Flags()
			if flags.Changed("base-branch") {
				cfg.BaseBranches = cherryPickArgs.baseBranches
			}
			if flags.Changed("record-origin") {
				cfg.Git.RecordOrigin = cherryPickArgs.recordOrigin
			}
			if flags.Changed("mainline") {
				cfg.Git.Mainline = cherryPickArgs.mainline
			}
			if flags.Changed("work-dir") {
				cfg.Git.WorkDir = cherryPickArgs.workDir
			}
			if flags.Changed("git-config-global") {
				cfg.Git.ConfigGlobal = cherryPickArgs.gitConfigGlobal
			}
		})
		if err != nil {
			return err
		}
		git, err := gitcli.NewRunner(logrus.NewEntry(logger), nil, cfg.Token)
		if err != nil {
			return err
		}
		return runStrategy(cmd, cfg, nichebackport.NewLocalCherryPickBackport(git, gitrepo.Inspector{}, cfg))
	},
}

func init() {
	rootCmd.AddCommand(cherryPickCmd)
	cherryPickCmd.Flags().StringSliceVar(&cherryPickArgs.baseBranches, "base-branch", nil, "Base branch patterns the pull request must be merged into (default any)")
	cherryPickCmd.Flags().BoolVar(&cherryPickArgs.recordOrigin, "record-origin", true, "Pass -x to git cherry-pick")
	cherryPickCmd.Flags().IntVar(&cherryPickArgs.mainline, "mainline", 0, "Parent number passed to git cherry-pick --mainline for merge commits")
	cherryPickCmd.Flags().StringVar(&cherryPickArgs.workDir, "work-dir", "", "Directory to clone into. Defaults to a temporary directory")
	cherryPickCmd.Flags().BoolVar(&cherryPickArgs.gitConfigGlobal, "git-config-global", true, "Write the committer identity with git config --global")
}
