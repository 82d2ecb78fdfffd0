package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/secmon-lab/coursematch/pkg/domain/model"
	"github.com/secmon-lab/coursematch/pkg/usecase"
	"github.com/secmon-lab/coursematch/pkg/utils/logging"
)

type RecommendUseCase interface {
	Recommend(ctx context.Context, profile *model.Profile, topK *int) (*model.RecommendationResult, error)
}

type ProfileUseCase interface {
	Options(ctx context.Context) (*usecase.FormOptions, error)
	Presets() []*model.Preset
	Preset(id string) (*model.Preset, error)
}

type CatalogUseCase interface {
	Index() (*model.CatalogIndex, error)
	Rebuild(ctx context.Context) (*model.CatalogIndex, error)
}

type Server struct {
	router        *chi.Mux
	recommendUC   RecommendUseCase
	profileUC     ProfileUseCase
	catalogUC     CatalogUseCase
	enableRebuild bool
	rateRequests  int
	rateWindow    time.Duration
}

type Options func(*Server)

// WithCatalogRebuild exposes POST /api/catalog/rebuild
func WithCatalogRebuild(enabled bool) Options {
	return func(s *Server) {
		s.enableRebuild = enabled
	}
}

// WithRateLimit limits /api requests per client IP. requests <= 0 disables the limit.
func WithRateLimit(requests int, window time.Duration) Options {
	return func(s *Server) {
		s.rateRequests = requests
		s.rateWindow = window
	}
}

func New(recommendUC RecommendUseCase, profileUC ProfileUseCase, catalogUC CatalogUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:      r,
		recommendUC: recommendUC,
		profileUC:   profileUC,
		catalogUC:   catalogUC,
		rateWindow:  time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler(catalogUC))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if s.rateRequests > 0 {
			r.Use(httprate.Limit(s.rateRequests, s.rateWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
			))
		}

		r.Post("/recommendations", recommendHandler(recommendUC))
		r.Get("/options", optionsHandler(profileUC))
		r.Get("/presets", presetsHandler(profileUC))
		r.Get("/presets/{id}/recommendations", presetRecommendHandler(profileUC, recommendUC))

		r.Get("/catalog", catalogHandler(catalogUC))
		if s.enableRebuild {
			r.Post("/catalog/rebuild", rebuildHandler(catalogUC))
		}
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

func healthHandler(catalogUC CatalogUseCase) http.HandlerFunc {
	type response struct {
		Status  string `json:"status"`
		Courses int    `json:"courses"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		idx, err := catalogUC.Index()
		if err != nil {
			writeJSON(w, r, http.StatusServiceUnavailable, response{Status: "starting"})
			return
		}
		writeJSON(w, r, http.StatusOK, response{Status: "ok", Courses: idx.Len()})
	}
}
