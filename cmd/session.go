package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/cgmanifest-schema/internal/config"
	"github.com/naka-gawa/cgmanifest-schema/internal/gateway"
	"github.com/naka-gawa/cgmanifest-schema/internal/ident"
	"github.com/naka-gawa/cgmanifest-schema/internal/logging"
)

// session is the authenticated state shared by one command invocation.
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	gateway *gateway.GitHubGateway
}

func newSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}

	logger, err := logging.New(cfg.LogLevel, logging.Format(cfg.LogFormat))
	if err != nil {
		return nil, err
	}
	runID, err := ident.NewULIDGenerator().NewID()
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("run_id", runID))

	body := ""
	if cfg.BodyFile != "" {
		data, err := os.ReadFile(cfg.BodyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read pull request body: %w", err)
		}
		body = string(data)
	}
	identity := gateway.Identity{
		BranchName:        cfg.Branch,
		PullRequestTitle:  cfg.Title,
		PullRequestBody:   body,
		CommitMessage:     cfg.CommitMessage,
		CommitAuthorName:  cfg.AuthorName,
		CommitAuthorEmail: cfg.AuthorEmail,
		ManifestFilename:  cfg.Manifest,
	}

	githubGateway, err := gateway.NewGitHubGateway(ctx, cfg.Token, identity, logger.Named("gateway"))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	return &session{cfg: cfg, logger: logger, gateway: githubGateway}, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}
