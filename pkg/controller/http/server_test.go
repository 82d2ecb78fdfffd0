package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	server "github.com/secmon-lab/coursematch/pkg/controller/http"
	"github.com/secmon-lab/coursematch/pkg/domain/model"
	"github.com/secmon-lab/coursematch/pkg/service/catalog"
	"github.com/secmon-lab/coursematch/pkg/service/encoder"
	"github.com/secmon-lab/coursematch/pkg/usecase"
)

const testCatalog = `title,provider,skill_tags,description,prerequisites,level,duration_weeks,cost,type,link
Python for Everybody,Coursera,"Python, Programming",Learn to program in Python,,Beginner,8,49,Online,https://example.com/py
Machine Learning,Stanford,"Machine Learning, Python",Supervised learning,"Python, Statistics",Advanced,11,79,Online,https://example.com/ml
SQL Basics,Udemy,SQL,Query relational databases,,Beginner,3,,Online,https://example.com/sql
Broken,Nobody,Go,Missing link,,Beginner,3,,Online,
`

func setup(t *testing.T, build bool, opts ...server.Options) *server.Server {
	t.Helper()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "courses.csv")
	gt.NoError(t, os.WriteFile(path, []byte(testCatalog), 0600)).Required()

	enc, err := encoder.NewHash(64)
	gt.NoError(t, err).Required()

	presets := model.NewPresetRegistry()
	presets.Register(&model.Preset{
		ID:   "data-scientist",
		Name: "Data Scientist",
		Profile: model.Profile{
			Education:       "MSc",
			Major:           "Mathematics",
			TechnicalSkills: []string{"Python", "Statistics"},
		},
	})

	uc := usecase.New(catalog.NewFileSource(path), enc,
		usecase.WithPresets(presets),
		usecase.WithProfileOptions(model.ProfileOptions{
			Education: []string{"BSc", "MSc"},
			Majors:    []string{"Computer Science", "Mathematics"},
		}),
	)
	if build {
		_, err := uc.Catalog.Build(ctx)
		gt.NoError(t, err).Required()
	}

	return server.New(uc.Recommend, uc.Profile, uc.Catalog, opts...)
}

func do(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

type recommendationBody struct {
	ShortTerm []struct {
		Title       string `json:"title"`
		Score       int    `json:"score"`
		CostPerWeek any    `json:"cost_per_week"`
	} `json:"short_term"`
	LongTerm []struct {
		Title          string   `json:"title"`
		MissingPrereqs []string `json:"missing_prereqs"`
	} `json:"long_term"`
	Excluded    []any `json:"excluded"`
	CatalogSize int   `json:"catalog_size"`
}

func TestHealth(t *testing.T) {
	w := do(t, setup(t, false), http.MethodGet, "/health", "")
	gt.Value(t, w.Code).Equal(http.StatusServiceUnavailable)

	w = do(t, setup(t, true), http.MethodGet, "/health", "")
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Body.String()).Contains(`"courses":3`)
}

func TestRecommendations(t *testing.T) {
	srv := setup(t, true)

	t.Run("valid profile", func(t *testing.T) {
		w := do(t, srv, http.MethodPost, "/api/recommendations", `{
			"education": "BSc",
			"major": "Computer Science",
			"technical_skills": ["python"],
			"interests": "data"
		}`)
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.String(t, w.Header().Get("Content-Type")).Contains("application/json")

		var body recommendationBody
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		gt.Value(t, body.CatalogSize).Equal(3)
		gt.Value(t, len(body.ShortTerm)+len(body.LongTerm)).Equal(3)
		gt.Array(t, body.Excluded).Length(0)

		// Machine Learning is advanced, so it is always long-term
		gt.Array(t, body.LongTerm).Length(1).Required()
		gt.Value(t, body.LongTerm[0].Title).Equal("Machine Learning")
		gt.Array(t, body.LongTerm[0].MissingPrereqs).Equal([]string{"statistics"})

		for _, c := range body.ShortTerm {
			if c.Title == "SQL Basics" {
				gt.Value(t, c.CostPerWeek).Equal(any("N/A"))
			}
			if c.Title == "Python for Everybody" {
				gt.Value(t, c.CostPerWeek).Equal(any(6.13))
			}
		}
	})

	t.Run("top_k limits results", func(t *testing.T) {
		w := do(t, srv, http.MethodPost, "/api/recommendations",
			`{"education":"BSc","major":"Computer Science","top_k":1}`)
		gt.Value(t, w.Code).Equal(http.StatusOK)

		var body recommendationBody
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		gt.Value(t, len(body.ShortTerm)+len(body.LongTerm)).Equal(1)
	})

	t.Run("bad requests", func(t *testing.T) {
		for name, payload := range map[string]string{
			"missing education": `{"major":"Computer Science"}`,
			"unknown education": `{"education":"PhD","major":"Computer Science"}`,
			"negative top_k":    `{"education":"BSc","major":"Computer Science","top_k":-1}`,
			"unknown field":     `{"education":"BSc","major":"Computer Science","age":3}`,
			"not json":          `education=BSc`,
		} {
			t.Run(name, func(t *testing.T) {
				w := do(t, srv, http.MethodPost, "/api/recommendations", payload)
				gt.Value(t, w.Code).Equal(http.StatusBadRequest)
			})
		}
	})

	t.Run("catalog not ready", func(t *testing.T) {
		w := do(t, setup(t, false), http.MethodPost, "/api/recommendations",
			`{"education":"BSc","major":"Computer Science"}`)
		gt.Value(t, w.Code).Equal(http.StatusServiceUnavailable)
	})
}

func TestPresets(t *testing.T) {
	srv := setup(t, true)

	w := do(t, srv, http.MethodGet, "/api/presets", "")
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Body.String()).Contains(`"id":"data-scientist"`)

	w = do(t, srv, http.MethodGet, "/api/presets/data-scientist/recommendations?top_k=2", "")
	gt.Value(t, w.Code).Equal(http.StatusOK)
	var body recommendationBody
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
	gt.Value(t, len(body.ShortTerm)+len(body.LongTerm)).Equal(2)

	w = do(t, srv, http.MethodGet, "/api/presets/data-scientist/recommendations?top_k=x", "")
	gt.Value(t, w.Code).Equal(http.StatusBadRequest)

	w = do(t, srv, http.MethodGet, "/api/presets/unknown/recommendations", "")
	gt.Value(t, w.Code).Equal(http.StatusNotFound)
}

func TestOptionsAndCatalog(t *testing.T) {
	srv := setup(t, true)

	w := do(t, srv, http.MethodGet, "/api/options", "")
	gt.Value(t, w.Code).Equal(http.StatusOK)
	var opts struct {
		Education       []string `json:"education"`
		SoftSkills      []string `json:"soft_skills"`
		TechnicalSkills []string `json:"technical_skills"`
	}
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &opts)).Required()
	gt.Array(t, opts.Education).Equal([]string{"BSc", "MSc"})
	gt.Array(t, opts.SoftSkills).Length(0)
	gt.Array(t, opts.TechnicalSkills).Equal([]string{"Machine Learning", "Programming", "Python", "SQL"})

	w = do(t, srv, http.MethodGet, "/api/catalog", "")
	gt.Value(t, w.Code).Equal(http.StatusOK)
	var cat struct {
		Courses int `json:"courses"`
		Issues  []struct {
			Line   int    `json:"line"`
			Reason string `json:"reason"`
		} `json:"issues"`
	}
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &cat)).Required()
	gt.Value(t, cat.Courses).Equal(3)
	gt.Array(t, cat.Issues).Length(1).Required()
	gt.Value(t, cat.Issues[0].Line).Equal(5)
}

func TestCatalogRebuild(t *testing.T) {
	w := do(t, setup(t, true), http.MethodPost, "/api/catalog/rebuild", "")
	gt.Value(t, w.Code).Equal(http.StatusNotFound)

	srv := setup(t, false, server.WithCatalogRebuild(true))
	w = do(t, srv, http.MethodPost, "/api/catalog/rebuild", "")
	gt.Value(t, w.Code).Equal(http.StatusAccepted)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if do(t, srv, http.MethodGet, "/health", "").Code == http.StatusOK {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("catalog was not rebuilt in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRateLimit(t *testing.T) {
	srv := setup(t, true, server.WithRateLimit(2, time.Minute))

	gt.Value(t, do(t, srv, http.MethodGet, "/api/presets", "").Code).Equal(http.StatusOK)
	gt.Value(t, do(t, srv, http.MethodGet, "/api/presets", "").Code).Equal(http.StatusOK)
	gt.Value(t, do(t, srv, http.MethodGet, "/api/presets", "").Code).Equal(http.StatusTooManyRequests)

	// health and metrics are outside the limit
	gt.Value(t, do(t, srv, http.MethodGet, "/health", "").Code).Equal(http.StatusOK)
}

func TestMetrics(t *testing.T) {
	w := do(t, setup(t, true), http.MethodGet, "/metrics", "")
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Body.String()).Contains("coursematch_catalog_courses")
}
