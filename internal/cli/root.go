// Package cli implements the HyperTask command-line interface using
// Cobra. Each subcommand maps to one marketplace capability (chat, run,
// wallet, history, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hypertask",
	Short: "HyperTask — AI agent marketplace client",
	Long: `HyperTask dispatches creative work to AI agents and holds the
payment in escrow until you approve the deliverables.

Describe a project, watch the agents execute it, review the results,
then release or refund the payment.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
