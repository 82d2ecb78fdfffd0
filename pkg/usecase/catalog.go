package usecase

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coursematch/pkg/domain/interfaces"
	"github.com/secmon-lab/coursematch/pkg/domain/model"
	"github.com/secmon-lab/coursematch/pkg/utils/logging"
	"github.com/secmon-lab/coursematch/pkg/utils/metrics"
)

// CatalogUseCase owns the active catalog index. Builds are serialized; readers load the
// current index without locking and keep using it even if a rebuild swaps it.
type CatalogUseCase struct {
	source  interfaces.CatalogSource
	encoder interfaces.TextEncoder

	index   atomic.Pointer[model.CatalogIndex]
	buildMu sync.Mutex
}

func NewCatalogUseCase(source interfaces.CatalogSource, enc interfaces.TextEncoder) *CatalogUseCase {
	return &CatalogUseCase{
		source:  source,
		encoder: enc,
	}
}

// Index returns the active index or ErrCatalogNotReady
func (uc *CatalogUseCase) Index() (*model.CatalogIndex, error) {
	idx := uc.index.Load()
	if idx == nil {
		return nil, goerr.Wrap(ErrCatalogNotReady, "no catalog index has been built")
	}
	return idx, nil
}

// Build loads, encodes and activates the catalog. On failure the previous index stays active.
func (uc *CatalogUseCase) Build(ctx context.Context) (*model.CatalogIndex, error) {
	uc.buildMu.Lock()
	defer uc.buildMu.Unlock()
	return uc.buildAndSwap(ctx)
}

// Rebuild is Build for callers that must not queue behind a running build
func (uc *CatalogUseCase) Rebuild(ctx context.Context) (*model.CatalogIndex, error) {
	if !uc.buildMu.TryLock() {
		return nil, goerr.Wrap(ErrRebuildInProgress, "catalog rebuild skipped")
	}
	defer uc.buildMu.Unlock()
	return uc.buildAndSwap(ctx)
}

func (uc *CatalogUseCase) buildAndSwap(ctx context.Context) (*model.CatalogIndex, error) {
	start := time.Now()
	idx, err := uc.build(ctx)
	metrics.CatalogBuildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CatalogBuilds.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.CatalogBuilds.WithLabelValues("success").Inc()
	metrics.CatalogCourses.Set(float64(idx.Len()))
	metrics.CatalogRowIssues.Set(float64(len(idx.Issues())))

	uc.index.Store(idx)

	logging.From(ctx).Info("catalog index built",
		"source", idx.Source(),
		"encoder", idx.Encoder(),
		"courses", idx.Len(),
		"issues", len(idx.Issues()),
		"dimension", idx.Dimension(),
		"duration", time.Since(start).String())

	return idx, nil
}

// Inspect loads and validates the catalog without encoding it
func (uc *CatalogUseCase) Inspect(ctx context.Context) ([]*model.CourseRecord, []model.RowIssue, error) {
	records, issues, err := uc.source.Load(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load catalog", goerr.V(SourceKey, uc.source.String()))
	}
	return records, issues, nil
}

func (uc *CatalogUseCase) build(ctx context.Context) (*model.CatalogIndex, error) {
	records, issues, err := uc.Inspect(ctx)
	if err != nil {
		return nil, err
	}

	logger := logging.From(ctx)
	for _, issue := range issues {
		logger.Warn("catalog row dropped",
			"line", issue.Line,
			"title", issue.Title,
			"reason", issue.Reason)
	}

	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.EmbeddingText()
	}

	var vectors [][]float64
	if len(texts) > 0 {
		vectors, err = uc.encoder.Encode(ctx, texts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode catalog",
				goerr.V(SourceKey, uc.source.String()),
				goerr.V(EncoderKey, uc.encoder.Model()))
		}
		if len(vectors) != len(texts) {
			return nil, goerr.New("encoder returned unexpected number of vectors",
				goerr.V("expected", len(texts)),
				goerr.V("actual", len(vectors)))
		}
	}

	courses, dropped := indexable(records, vectors)
	for _, issue := range dropped {
		logger.Warn("catalog row dropped",
			"line", issue.Line,
			"title", issue.Title,
			"reason", issue.Reason)
	}
	if len(dropped) > 0 {
		issues = append(slices.Clone(issues), dropped...)
		slices.SortStableFunc(issues, func(a, b model.RowIssue) int {
			return cmp.Compare(a.Line, b.Line)
		})
	}

	return model.NewCatalogIndex(courses, issues, uc.source.String(), uc.encoder.Model(), time.Now().UTC()), nil
}

// indexable pairs records with their vectors. Records whose vector is empty or whose length
// differs from the first non-empty vector never enter the index and come back as issues.
func indexable(records []*model.CourseRecord, vectors [][]float64) ([]*model.Course, []model.RowIssue) {
	dimension := 0
	for _, v := range vectors {
		if len(v) > 0 {
			dimension = len(v)
			break
		}
	}

	courses := make([]*model.Course, 0, len(records))
	var dropped []model.RowIssue
	for i, rec := range records {
		switch vec := vectors[i]; {
		case len(vec) == 0:
			dropped = append(dropped, model.RowIssue{Line: rec.Line, Title: rec.Title, Reason: "encoder returned no embedding"})
		case len(vec) != dimension:
			dropped = append(dropped, model.RowIssue{
				Line:   rec.Line,
				Title:  rec.Title,
				Reason: fmt.Sprintf("embedding has %d dimensions, expected %d", len(vec), dimension),
			})
		default:
			courses = append(courses, rec.ToCourse(len(courses), vec))
		}
	}
	return courses, dropped
}
