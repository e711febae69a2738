// Package main provides the health summary service entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "healthsummary",
		Short:        "Health record aggregation and AI summary service",
		SilenceUsage: true,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(inspectCmd())
	cmd.AddCommand(summarizeCmd())
	cmd.AddCommand(templateCmd())
	return cmd
}
