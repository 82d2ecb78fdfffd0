package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/secmon-lab/coursematch/pkg/domain/model"
	"github.com/secmon-lab/coursematch/pkg/usecase"
	"github.com/secmon-lab/coursematch/pkg/utils/errutil"
	"github.com/secmon-lab/coursematch/pkg/utils/logging"
)

// CatalogRebuilder rebuilds the active catalog index
type CatalogRebuilder interface {
	Rebuild(ctx context.Context) (*model.CatalogIndex, error)
}

// CatalogRefreshWorker periodically reloads the catalog so edits to the source show up
// without a restart. The first build happens at startup, not here.
//
// Architecture assumptions:
// - Single server instance (each instance refreshes its own in-process index)
type CatalogRefreshWorker struct {
	catalog  CatalogRebuilder
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewCatalogRefreshWorker creates a new worker for refreshing the catalog index
func NewCatalogRefreshWorker(catalog CatalogRebuilder, interval time.Duration) *CatalogRefreshWorker {
	return &CatalogRefreshWorker{
		catalog:  catalog,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background refresh loop. It does not block.
func (w *CatalogRefreshWorker) Start(ctx context.Context) {
	logging.From(ctx).Info("Catalog refresh worker starting",
		"interval", w.interval.String())

	go w.run(ctx)
}

// Stop signals the worker to stop and waits for completion
func (w *CatalogRefreshWorker) Stop() {
	w.stopOnce.Do(func() {
		logging.Default().Info("Catalog refresh worker stopping")
		close(w.stopCh)
	})
	<-w.doneCh
	logging.Default().Info("Catalog refresh worker stopped")
}

func (w *CatalogRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.refresh(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.From(ctx).Info("Catalog refresh worker context cancelled")
			return
		}
	}
}

// refresh performs a single cycle. A failure keeps the previous index and is retried on
// the next tick.
func (w *CatalogRefreshWorker) refresh(ctx context.Context) {
	idx, err := w.catalog.Rebuild(ctx)
	if errors.Is(err, usecase.ErrRebuildInProgress) {
		logging.From(ctx).Info("Catalog refresh skipped, rebuild already running")
		return
	}
	if err != nil {
		errutil.Handle(ctx, err, "Catalog refresh failed (will retry next interval)")
		return
	}

	logging.From(ctx).Info("Catalog refresh completed",
		"courses", idx.Len(),
		"issues", len(idx.Issues()))
}
