// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/canonical/tenant-sites/internal/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Get the application's version",
	Long:  `Get the application's version and the commit it was built from`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "App Version: %s\n", version.Version)

		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}

		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", s.Value)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
