package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coursematch/pkg/utils/errutil"
	"github.com/secmon-lab/coursematch/pkg/utils/logging"
)

// Dispatch runs task in a new goroutine with a background context that keeps
// the caller's logger, so the work outlives the HTTP request that triggered it.
// Errors and panics are reported through errutil.Handle.
func Dispatch(ctx context.Context, task string, handler func(ctx context.Context) error) {
	logger := logging.From(ctx).With("task", task)
	bgCtx := logging.With(context.Background(), logger)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				errutil.Handle(bgCtx, goerr.New("panic in background task", goerr.V("task", task), goerr.V("panic", r)), "background task panicked")
			}
		}()

		logger.Debug("background task started")
		if err := handler(bgCtx); err != nil {
			errutil.Handle(bgCtx, err, "background task failed")
			return
		}
		logger.Debug("background task finished")
	}()
}
