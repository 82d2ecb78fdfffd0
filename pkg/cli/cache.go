package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coursematch/pkg/cli/config"
	"github.com/secmon-lab/coursematch/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdCache() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the catalog embedding cache",
		Commands: []*cli.Command{
			cmdCachePrune(),
		},
	}
}

func cmdCachePrune() *cli.Command {
	var olderThan time.Duration
	var encoderCfg config.Encoder
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.DurationFlag{
			Name:        "older-than",
			Usage:       "Also delete entries of the current model stored longer ago than this (0 keeps them)",
			Destination: &olderThan,
		},
	}
	flags = append(flags, encoderCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "prune",
		Usage: "Delete cached embeddings produced by other encoder models",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			enc, err := encoderCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure text encoder")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			if repo == nil {
				logger.Info("Embedding cache disabled, nothing to prune")
				return nil
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			deleted, err := repo.DeleteExceptModel(ctx, enc.Model())
			if err != nil {
				return goerr.Wrap(err, "failed to prune embedding cache")
			}
			logger.Info("Pruned embeddings of other models", "model", enc.Model(), "deleted", deleted)

			if olderThan > 0 {
				before := time.Now().Add(-olderThan)
				deleted, err := repo.DeleteCreatedBefore(ctx, enc.Model(), before)
				if err != nil {
					return goerr.Wrap(err, "failed to prune old embeddings")
				}
				logger.Info("Pruned old embeddings", "model", enc.Model(), "before", before, "deleted", deleted)
			}
			return nil
		},
	}
}
