// Copyright 2025 Aviator Technologies, Inc.
// SPDX-License-Identifier: MIT

package cmd

import (
	"os"
	"time"

	"github.com/aviator-co/niche-backport/gitprotocontext"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootArgs struct {
	configFile string
	logLevel   string
	logFormat  string
	outputFile string

	lsRefsTimeout time.Duration
}

var logger = logrus.New()

var rootCmd = &cobra.Command{
	Use:           "niche-backport",
	Short:         "Backport merged pull requests to the branches named by their labels",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(rootArgs.logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		logger.SetOutput(os.Stderr)
		switch rootArgs.logFormat {
		case "text":
			logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		case "json":
			logger.SetFormatter(&logrus.JSONFormatter{})
		default:
			return errors.Errorf("unknown log format %q", rootArgs.logFormat)
		}
		cmd.SetContext(gitprotocontext.WithLsRefsTimeout(cmd.Context(), rootArgs.lsRefsTimeout))
		return nil
	},
}

// Execute runs the command line. The error is already logged.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logger.Error(err.Error())
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootArgs.configFile, "config", "", "Optional YAML config file")
	rootCmd.PersistentFlags().StringVar(&rootArgs.logLevel, "log-level", "info", "Log level")
	rootCmd.PersistentFlags().StringVar(&rootArgs.logFormat, "log-format", "text", "Log format (text or json)")
	rootCmd.PersistentFlags().StringVar(&rootArgs.outputFile, "output-file", "-", "Output file path. '-', which is the default, means stdout")
	rootCmd.PersistentFlags().DurationVar(&rootArgs.lsRefsTimeout, "ls-refs-timeout", 30*time.Second, "Timeout of a remote ls-refs call. Zero means no timeout")
}
