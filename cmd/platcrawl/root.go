// Package main provides the entry point for the platcrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for platcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platcrawl",
		Short: "Plat map crawler for the Esmeralda County assessor archive",
		Long: `Platcrawl downloads plat maps from the Esmeralda County assessor's
property site and maintains a local archive of them.

Each community's maps are discovered two ways: by following the
cross-references printed on already-downloaded sheets, and by
systematically sweeping sequence numbers until the tail of the sequence
is reached. Requests are rate limited to keep the load on the county
server negligible.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
