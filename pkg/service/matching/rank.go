package matching

import (
	"cmp"
	"slices"

	"github.com/secmon-lab/coursematch/pkg/domain/model"
	"github.com/secmon-lab/coursematch/pkg/domain/types"
)

// DefaultTopK is the number of recommendations returned when the caller does not ask
const DefaultTopK = 15

// RankAndBucket sorts candidates by score, highest first, keeping catalog order among equal
// scores, keeps the first topK and splits them into short-term and long-term buckets.
// The input slice is not modified.
func RankAndBucket(candidates []*model.ScoredCandidate, topK int) *model.RecommendationResult {
	result := model.NewRecommendationResult()
	if topK <= 0 {
		return result
	}

	ranked := slices.Clone(candidates)
	slices.SortStableFunc(ranked, func(a, b *model.ScoredCandidate) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	for _, c := range ranked {
		switch types.BucketFor(c.Course.DurationWeeks, c.Course.Level) {
		case types.BucketShortTerm:
			result.ShortTerm = append(result.ShortTerm, c)
		default:
			result.LongTerm = append(result.LongTerm, c)
		}
	}
	return result
}
