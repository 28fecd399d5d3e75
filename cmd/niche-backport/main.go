// Copyright 2025 Aviator Technologies, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"os"

	"github.com/aviator-co/niche-backport/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
