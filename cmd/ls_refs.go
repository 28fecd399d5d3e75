// Copyright 2025 Aviator Technologies, Inc.
// SPDX-License-Identifier: MIT

package cmd

import (
	"net/http"
	"os"

	nichebackport "github.com/aviator-co/niche-backport"
	"github.com/spf13/cobra"
)

var lsRefsArgs struct {
	repoURL     string
	refPrefixes []string
}

// lsRefsCmd checks what the cherry-pick strategy sees on the remote before it clones.
var lsRefsCmd = &cobra.Command{
	Use:   "ls-refs",
	Short: "List the remote refs with the protocol v2 ls-refs command",
	RunE: func(cmd *cobra.Command, args []string) error {
		if authzHeader == "" && basicAuthzUser == "" {
			if token := os.Getenv("GITHUB_TOKEN"); token != "" {
				basicAuthzUser = "x-access-token"
				basicAuthzPassword = token
			}
		}
		client := &http.Client{Transport: &authnRoundtripper{}}
		refs, debugInfo, fetchErr := nichebackport.LsRefs(cmd.Context(), lsRefsArgs.repoURL, client, lsRefsArgs.refPrefixes)
		if refs == nil {
			// Always create an empty slice for JSON output.
			refs = []*nichebackport.RefInfo{}
		}
		output := lsRefsOutput{
			Refs:            refs,
			ResponseHeaders: debugInfo.ResponseHeaders,
		}
		if fetchErr != nil {
			output.Error = fetchErr.Error()
		}
		if err := writeJSON(rootArgs.outputFile, output); err != nil {
			return err
		}
		return fetchErr
	},
}

type lsRefsOutput struct {
	Refs            []*nichebackport.RefInfo `json:"refs"`
	ResponseHeaders map[string][]string      `json:"responseHeaders"`
	Error           string                   `json:"error,omitempty"`
}

func init() {
	rootCmd.AddCommand(lsRefsCmd)
	lsRefsCmd.Flags().StringVar(&lsRefsArgs.repoURL, "repo-url", "", "Git repository URL")
	lsRefsCmd.Flags().StringSliceVar(&lsRefsArgs.refPrefixes, "ref-prefixes", nil, "Ref prefixes")
	lsRefsCmd.MarkFlagRequired("repo-url")

	lsRefsCmd.Flags().StringVar(&authzHeader, "authz-header", "", "Optional authorization header. Defaults to GITHUB_TOKEN basic auth")
	lsRefsCmd.Flags().StringVar(&basicAuthzUser, "basic-authz-user", "", "Optional HTTP Basic Auth user")
	lsRefsCmd.Flags().StringVar(&basicAuthzPassword, "basic-authz-password", "", "Optional HTTP Basic Auth password")
}
