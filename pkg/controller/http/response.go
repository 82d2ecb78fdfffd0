package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coursematch/pkg/service/encoder"
	"github.com/secmon-lab/coursematch/pkg/usecase"
	"github.com/secmon-lab/coursematch/pkg/utils/errutil"
	"github.com/secmon-lab/coursematch/pkg/utils/safe"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

// statusOf maps use case errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidProfile):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrPresetNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrRebuildInProgress):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrCatalogNotReady), errors.Is(err, encoder.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}
