// Copyright 2025 Aviator Technologies, Inc.
// SPDX-License-Identifier: MIT

package cmd

import (
	"encoding/json"
	"io"
	"net/http"
	"os"

	nichebackport "github.com/aviator-co/niche-backport"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	authzHeader        string
	basicAuthzUser     string
	basicAuthzPassword string
)

type authnRoundtripper struct{}

func (rt *authnRoundtripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if authzHeader != "" {
		req.Header.Set("Authorization", authzHeader)
	} else if basicAuthzUser != "" && basicAuthzPassword != "" {
		req.SetBasicAuth(basicAuthzUser, basicAuthzPassword)
	}
	return http.DefaultTransport.RoundTrip(req)
}

func writeJSON(outputPath string, v any) error {
	var of io.Writer
	if outputPath == "-" {
		of = os.Stdout
	} else {
		file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return err
		}
		defer file.Close()
		of = file
	}
	enc := json.NewEncoder(of)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return nil
}

// loadConfig builds the config of a strategy. Later sources win: defaults, the config file, the
// environment, then the flags set by applyFlags.
func loadConfig(strategy string, applyFlags func(*nichebackport.Config)) (nichebackport.Config, error) {
	cfg := nichebackport.DefaultConfig(strategy)
	if rootArgs.configFile != "" {
		if err := cfg.ApplyFile(rootArgs.configFile, strategy); err != nil {
			return cfg, err
		}
	}
	cfg.ApplyEnv(os.Getenv)
	applyFlags(&cfg)
	return cfg, nil
}

type backportOutput struct {
	*nichebackport.Result
	Error string `json:"error,omitempty"`
}

// runStrategy runs the strategy and writes the result as JSON even when it fails.
func runStrategy(cmd *cobra.Command, cfg nichebackport.Config, strategy nichebackport.Strategy) error {
	result, runErr := nichebackport.Run(cmd.Context(), logrus.NewEntry(logger), cfg, strategy)
	output := backportOutput{Result: result}
	if runErr != nil {
		output.Error = runErr.Error()
	}
	if err := writeJSON(rootArgs.outputFile, output); err != nil {
		return err
	}
	return runErr
}
