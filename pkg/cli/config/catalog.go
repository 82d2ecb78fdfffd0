package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coursematch/pkg/service/catalog"
	"github.com/urfave/cli/v3"
)

// Catalog holds CLI flags for the course catalog source
type Catalog struct {
	location        string
	refreshInterval time.Duration
	enableRebuild   bool
}

// Flags returns the catalog location flag shared by every command
func (c *Catalog) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "catalog",
			Usage:       "Course catalog CSV (local path or gs://bucket/object)",
			Category:    "Catalog",
			Required:    true,
			Sources:     cli.EnvVars("COURSEMATCH_CATALOG"),
			Destination: &c.location,
		},
	}
}

// RefreshFlags returns flags only meaningful for a long running server
func (c *Catalog) RefreshFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "catalog-refresh-interval",
			Usage:       "Reload the catalog periodically (0 disables)",
			Category:    "Catalog",
			Sources:     cli.EnvVars("COURSEMATCH_CATALOG_REFRESH_INTERVAL"),
			Destination: &c.refreshInterval,
		},
		&cli.BoolFlag{
			Name:        "enable-catalog-rebuild",
			Usage:       "Expose POST /api/catalog/rebuild",
			Category:    "Catalog",
			Sources:     cli.EnvVars("COURSEMATCH_ENABLE_CATALOG_REBUILD"),
			Destination: &c.enableRebuild,
		},
	}
}

func (c *Catalog) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("location", c.location),
		slog.String("refresh_interval", c.refreshInterval.String()),
		slog.Bool("rebuild_endpoint", c.enableRebuild),
	}
}

func (c *Catalog) RefreshInterval() time.Duration {
	return c.refreshInterval
}

func (c *Catalog) RebuildEnabled() bool {
	return c.enableRebuild
}

// Configure opens the catalog source. The caller must Close it.
func (c *Catalog) Configure(ctx context.Context) (*catalog.Source, error) {
	src, err := catalog.NewSource(ctx, c.location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure catalog source")
	}
	return src, nil
}
