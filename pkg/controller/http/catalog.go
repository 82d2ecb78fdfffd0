package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/secmon-lab/coursematch/pkg/usecase"
	"github.com/secmon-lab/coursematch/pkg/utils/async"
	"github.com/secmon-lab/coursematch/pkg/utils/logging"
)

func catalogHandler(uc CatalogUseCase) http.HandlerFunc {
	type issueResponse struct {
		Line   int    `json:"line"`
		Title  string `json:"title"`
		Reason string `json:"reason"`
	}
	type response struct {
		Source    string          `json:"source"`
		Encoder   string          `json:"encoder"`
		Courses   int             `json:"courses"`
		Dimension int             `json:"dimension"`
		BuiltAt   time.Time       `json:"built_at"`
		Issues    []issueResponse `json:"issues"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		idx, err := uc.Index()
		if err != nil {
			handleError(w, r, err)
			return
		}

		issues := idx.Issues()
		resp := response{
			Source:    idx.Source(),
			Encoder:   idx.Encoder(),
			Courses:   idx.Len(),
			Dimension: idx.Dimension(),
			BuiltAt:   idx.BuiltAt(),
			Issues:    make([]issueResponse, len(issues)),
		}
		for i, issue := range issues {
			resp.Issues[i] = issueResponse{Line: issue.Line, Title: issue.Title, Reason: issue.Reason}
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

// rebuildHandler starts a rebuild in the background and returns immediately
func rebuildHandler(uc CatalogUseCase) http.HandlerFunc {
	type response struct {
		Status string `json:"status"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		async.Dispatch(r.Context(), "catalog_rebuild", func(ctx context.Context) error {
			_, err := uc.Rebuild(ctx)
			if errors.Is(err, usecase.ErrRebuildInProgress) {
				logging.From(ctx).Info("Catalog rebuild already running, request ignored")
				return nil
			}
			return err
		})
		writeJSON(w, r, http.StatusAccepted, response{Status: "accepted"})
	}
}
