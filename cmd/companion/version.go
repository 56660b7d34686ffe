package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/touchnstars/companion/internal/version"
)

// versionCmd implements the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of companion",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := version.Get()
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "companion version %s\n", info.Full())
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
