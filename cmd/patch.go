package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/cgmanifest-schema/internal/manifest"
	"github.com/naka-gawa/cgmanifest-schema/internal/usecase"
)

var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Adds $schema to every cgmanifest.json in the organization and opens pull requests",
	Long: `Searches the organization for cgmanifest.json files. For every repository that is
neither archived nor private, the repository is forked (or the existing fork is
reused), the manifest gets a $schema field and a pull request is opened
upstream. Repositories that already have the pull request are skipped, so the
command can be rerun safely.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := newSession(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.close()

		validator, err := manifest.NewValidator()
		if err != nil {
			return err
		}
		patcher := usecase.NewPatcher(s.gateway, validator, usecase.PatcherOptions{
			SchemaURL:   s.cfg.SchemaURL,
			Concurrency: s.cfg.Concurrency,
			FailFast:    s.cfg.FailFast,
		}, s.logger.Named("patch"))

		report, runErr := patcher.Run(ctx, s.cfg.Org)
		if report != nil {
			out := cmd.OutOrStdout()
			for _, state := range []usecase.OutcomeState{usecase.OutcomeCreated, usecase.OutcomeSkipped, usecase.OutcomeUpToDate, usecase.OutcomeFailed} {
				fmt.Fprintf(out, "%s: %d\n", state, report.Count(state))
			}
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(patchCmd)
}
