// Copyright 2025 Aviator Technologies, Inc.
// SPDX-License-Identifier: MIT

package cmd

import (
	nichebackport "github.com/aviator-co/niche-backport"
	"github.com/aviator-co/niche-backport/internal/ghapi"
	"github.com/spf13/cobra"
)

var backportArgs struct {
	baseBranches []string
	githubToken  string
}

var backportCmd = &cobra.Command{
	Use:   "backport",
	Short: "Backport a merged pull request with the GitHub API without cloning",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nichebackport.StrategyRemoteTree, func(cfg *nichebackport.Config) {
			if cmd.Flags().Changed("base-branch") {
				cfg.BaseBranches = backportArgs.baseBranches
			}
			if backportArgs.githubToken != "" {
				cfg.Token = backportArgs.githubToken
			}
		})
		if err != nil {
			return err
		}
		api, err := ghapi.NewClient(cmd.Context(), cfg.Token, cfg.APIURL)
		if err != nil {
			return err
		}
		return runStrategy(cmd, cfg, nichebackport.NewRemoteTreeBackport(api, cfg))
	},
}

func init() {
	rootCmd.AddCommand(backportCmd)
	backportCmd.Flags().StringSliceVar(&backportArgs.baseBranches, "base-branch", nil, "Base branch patterns the pull request must be merged into (default main)")
	backportCmd.Flags().StringVar(&backportArgs.githubToken, "github-token", "", "GitHub token. Defaults to GITHUB_TOKEN")
}
