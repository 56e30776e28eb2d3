// Package cmd wires the makeready subcommands onto the root command.
package cmd

import "github.com/spf13/cobra"

// Register attaches all subcommands to the root command.
func Register(root *cobra.Command) {
	root.AddCommand(
		newRunCommand(),
		newConfigCommand(),
	)
}
