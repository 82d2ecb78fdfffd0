package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coursematch/pkg/cli/config"
	"github.com/secmon-lab/coursematch/pkg/usecase"
	"github.com/secmon-lab/coursematch/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// runtimeConfig groups the configs every command that builds the catalog needs
type runtimeConfig struct {
	engine  config.Engine
	encoder config.Encoder
	catalog config.Catalog
	repo    config.Repository
}

func (x *runtimeConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.catalog.Flags()...)
	flags = append(flags, x.engine.Flags()...)
	flags = append(flags, x.encoder.Flags()...)
	flags = append(flags, x.repo.Flags()...)
	return flags
}

// setup constructs the process-wide encoder, embedding cache and use cases and builds the
// first catalog index. The returned function releases every resource.
func (x *runtimeConfig) setup(ctx context.Context) (*usecase.UseCases, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	settings, err := x.engine.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load engine configuration")
	}

	enc, err := x.encoder.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure text encoder")
	}
	logging.Default().Info("Text encoder configured", "encoder", x.encoder.LogAttrs())

	repo, err := x.repo.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}
	if repo != nil {
		closers = append(closers, func() {
			if err := repo.Close(); err != nil {
				logging.Default().Error("failed to close repository", "error", err.Error())
			}
		})
	}

	src, err := x.catalog.Configure(ctx)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	closers = append(closers, func() {
		if err := src.Close(); err != nil {
			logging.Default().Error("failed to close catalog source", "error", err.Error())
		}
	})

	ucOpts := []usecase.Option{
		usecase.WithProfileOptions(settings.Options),
		usecase.WithPresets(settings.Presets),
		usecase.WithTopK(settings.TopK),
	}
	if settings.Workers > 0 {
		ucOpts = append(ucOpts, usecase.WithWorkers(settings.Workers))
	}
	if repo != nil {
		ucOpts = append(ucOpts, usecase.WithEmbeddingRepository(repo))
	}
	uc := usecase.New(src, enc, ucOpts...)

	if _, err := uc.Catalog.Build(ctx); err != nil {
		closeAll()
		return nil, nil, goerr.Wrap(err, "failed to build catalog index")
	}

	return uc, closeAll, nil
}
