// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/cgmanifest-schema/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "cgmanifest-schema",
	Short: "A CLI tool to add $schema to cgmanifest.json files across a GitHub organization.",
	Long: `cgmanifest-schema finds every repository in a GitHub organization that contains
a cgmanifest.json, forks it, adds a $schema field to the manifest and opens a
pull request upstream. The track command reports how many of those pull
requests were merged, are still open, or were closed.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	config.RegisterFlags(rootCmd.PersistentFlags())
}
