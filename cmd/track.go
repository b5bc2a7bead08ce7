package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/cgmanifest-schema/internal/usecase"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Reports how many of the opened pull requests are merged, open or closed",
	Long:  `Searches the pull requests opened by the authenticated user with the canonical title, resolves the state of each one and prints the tally.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := newSession(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.close()

		progress, err := usecase.NewTracker(s.gateway, s.logger.Named("track")).Track(ctx, s.cfg.Owner())
		if err != nil {
			return fmt.Errorf("failed to track pull requests: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			// Marshal the results into a pretty-printed JSON string.
			jsonData, err := json.MarshalIndent(progress, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal results to JSON: %w", err)
			}
			fmt.Fprintln(out, string(jsonData))
			return nil
		}
		fmt.Fprintf(out, "merged: %d\n", progress.Tally.Merged)
		fmt.Fprintf(out, "open: %d\n", progress.Tally.Open)
		fmt.Fprintf(out, "closed: %d\n", progress.Tally.Closed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trackCmd)
	trackCmd.Flags().Bool("json", false, "Print the result as JSON")
}
