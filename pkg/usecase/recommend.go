package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coursematch/pkg/domain/interfaces"
	"github.com/secmon-lab/coursematch/pkg/domain/model"
	"github.com/secmon-lab/coursematch/pkg/service/matching"
	"github.com/secmon-lab/coursematch/pkg/utils/logging"
	"github.com/secmon-lab/coursematch/pkg/utils/metrics"
	"golang.org/x/sync/errgroup"
)

type RecommendUseCase struct {
	catalog *CatalogUseCase
	encoder interfaces.TextEncoder
	options model.ProfileOptions
	topK    int
	workers int
}

func NewRecommendUseCase(catalog *CatalogUseCase, enc interfaces.TextEncoder, options model.ProfileOptions, topK, workers int) *RecommendUseCase {
	return &RecommendUseCase{
		catalog: catalog,
		encoder: enc,
		options: options,
		topK:    topK,
		workers: workers,
	}
}

// DefaultTopK is the result size used when Recommend receives a nil topK
func (uc *RecommendUseCase) DefaultTopK() int {
	return uc.topK
}

// Recommend scores every catalog course against the profile and returns the top ranked
// courses split into short-term and long-term buckets. A nil topK uses the default.
func (uc *RecommendUseCase) Recommend(ctx context.Context, profile *model.Profile, topK *int) (*model.RecommendationResult, error) {
	start := time.Now()
	result, err := uc.recommend(ctx, profile, topK)
	metrics.RecommendationDuration.Observe(time.Since(start).Seconds())

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.Recommendations.WithLabelValues(status).Inc()
	return result, err
}

func (uc *RecommendUseCase) recommend(ctx context.Context, profile *model.Profile, topK *int) (*model.RecommendationResult, error) {
	if profile == nil {
		return nil, goerr.Wrap(ErrInvalidProfile, "profile is required")
	}
	if err := uc.options.Validate(profile); err != nil {
		return nil, err
	}

	k := uc.topK
	if topK != nil {
		k = *topK
	}

	idx, err := uc.catalog.Index()
	if err != nil {
		return nil, err
	}

	profileVec, err := matching.Vectorize(ctx, uc.encoder, profile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to vectorize profile", goerr.V(EncoderKey, uc.encoder.Model()))
	}

	courses := idx.Courses()
	slots := make([]*model.ScoredCandidate, len(courses))
	failures := make([]string, len(courses))

	var eg errgroup.Group
	eg.SetLimit(uc.workers)
	for i, course := range courses {
		eg.Go(func() error {
			candidate, err := scoreCourse(profileVec, profile, course)
			if err != nil {
				failures[i] = err.Error()
				return nil
			}
			slots[i] = candidate
			return nil
		})
	}
	_ = eg.Wait()

	candidates := make([]*model.ScoredCandidate, 0, len(courses))
	var excluded []model.ExcludedCourse
	for i, c := range slots {
		if c != nil {
			candidates = append(candidates, c)
			continue
		}
		excluded = append(excluded, model.ExcludedCourse{
			Title:  courses[i].Title,
			Index:  courses[i].Index,
			Reason: failures[i],
		})
	}

	if len(excluded) > 0 {
		metrics.ExcludedCourses.Add(float64(len(excluded)))
		logger := logging.From(ctx)
		for _, ex := range excluded {
			logger.Warn("course excluded from recommendation",
				"course", ex.Title,
				"index", ex.Index,
				"reason", ex.Reason)
		}
	}

	result := matching.RankAndBucket(candidates, k)
	if len(excluded) > 0 {
		result.Excluded = excluded
	}
	result.CatalogSize = idx.Len()

	return result, nil
}

// scoreCourse turns a panic while scoring one course into an error for that course only
func scoreCourse(profileVec []float64, profile *model.Profile, course *model.Course) (candidate *model.ScoredCandidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = goerr.New("panic while scoring", goerr.V(model.CourseKey, course.Title), goerr.V("panic", r))
		}
	}()
	return matching.Score(profileVec, profile, course)
}
