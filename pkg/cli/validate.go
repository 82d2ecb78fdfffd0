package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coursematch/pkg/cli/config"
	"github.com/secmon-lab/coursematch/pkg/domain/model"
	"github.com/secmon-lab/coursematch/pkg/usecase"
	"github.com/secmon-lab/coursematch/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// ErrCatalogHasIssues is returned by validate --strict when any row was dropped
var ErrCatalogHasIssues = goerr.New("catalog has invalid rows")

func cmdValidate() *cli.Command {
	var strict bool
	var engineCfg config.Engine
	var catalogCfg config.Catalog

	var flags []cli.Flag
	flags = append(flags, catalogCfg.Flags()...)
	flags = append(flags, engineCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "strict",
		Usage:       "Fail when any catalog row is invalid",
		Destination: &strict,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Check the course catalog and engine configuration without encoding",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			settings, err := engineCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			logger.Info("Engine configuration validation passed",
				"top_k", settings.TopK,
				"preset_count", len(settings.Presets.Presets()),
			)

			src, err := catalogCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := src.Close(); err != nil {
					logger.Error("failed to close catalog source", "error", err.Error())
				}
			}()

			records, issues, err := usecase.NewCatalogUseCase(src, nil).Inspect(ctx)
			if err != nil {
				return err
			}

			report(c, records, issues)

			if strict && len(issues) > 0 {
				return goerr.Wrap(ErrCatalogHasIssues, "strict validation failed", goerr.V("issues", len(issues)))
			}
			return nil
		},
	}
}

func report(c *cli.Command, records []*model.CourseRecord, issues []model.RowIssue) {
	w := c.Root().Writer
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	unknownLevels := 0
	for _, rec := range records {
		if !rec.Level.IsKnown() {
			unknownLevels++
		}
	}

	ok.Fprintf(w, "%d valid course(s)\n", len(records))
	if unknownLevels > 0 {
		fmt.Fprintf(w, "%d course(s) use a level other than Beginner, Intermediate or Advanced\n", unknownLevels)
	}
	if len(issues) == 0 {
		return
	}

	bad.Fprintf(w, "%d invalid row(s)\n", len(issues))
	for _, issue := range issues {
		title := issue.Title
		if title == "" {
			title = "-"
		}
		fmt.Fprintf(w, "  line %d (%s): %s\n", issue.Line, title, issue.Reason)
	}
}
