package matching_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/coursematch/pkg/domain/model"
	"github.com/secmon-lab/coursematch/pkg/domain/types"
	"github.com/secmon-lab/coursematch/pkg/service/matching"
)

func candidate(index, score, weeks int, level types.Level) *model.ScoredCandidate {
	return &model.ScoredCandidate{
		Course: &model.Course{
			Index:         index,
			Title:         "course",
			Level:         level,
			DurationWeeks: weeks,
		},
		Score: score,
	}
}

func indexes(cs []*model.ScoredCandidate) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.Course.Index
	}
	return out
}

func TestRankAndBucket(t *testing.T) {
	t.Run("sorts by score and splits by duration and level", func(t *testing.T) {
		cands := []*model.ScoredCandidate{
			candidate(0, 40, 4, types.LevelBeginner),
			candidate(1, 90, 20, types.LevelIntermediate),
			candidate(2, 70, 8, types.LevelAdvanced),
			candidate(3, 80, 12, types.LevelIntermediate),
		}

		result := matching.RankAndBucket(cands, 15)
		gt.Array(t, indexes(result.ShortTerm)).Equal([]int{3, 0})
		gt.Array(t, indexes(result.LongTerm)).Equal([]int{1, 2})
		gt.String(t, result.ID).NotEqual("")
	})

	t.Run("equal scores keep catalog order", func(t *testing.T) {
		cands := []*model.ScoredCandidate{
			candidate(0, 0, 20, types.LevelAdvanced),
			candidate(1, 55, 4, types.LevelBeginner),
			candidate(2, 0, 30, types.LevelAdvanced),
			candidate(3, 55, 6, types.LevelBeginner),
			candidate(4, 0, 16, types.LevelAdvanced),
		}

		result := matching.RankAndBucket(cands, 10)
		gt.Array(t, indexes(result.ShortTerm)).Equal([]int{1, 3})
		gt.Array(t, indexes(result.LongTerm)).Equal([]int{0, 2, 4})
	})

	t.Run("truncates to top k before bucketing", func(t *testing.T) {
		cands := []*model.ScoredCandidate{
			candidate(0, 10, 4, types.LevelBeginner),
			candidate(1, 90, 40, types.LevelBeginner),
			candidate(2, 80, 4, types.LevelBeginner),
			candidate(3, 70, 4, types.LevelBeginner),
		}

		result := matching.RankAndBucket(cands, 2)
		gt.Value(t, result.Len()).Equal(2)
		gt.Array(t, indexes(result.ShortTerm)).Equal([]int{2})
		gt.Array(t, indexes(result.LongTerm)).Equal([]int{1})
	})

	t.Run("top k larger than catalog", func(t *testing.T) {
		cands := []*model.ScoredCandidate{
			candidate(0, 10, 4, types.LevelBeginner),
			candidate(1, 20, 40, types.LevelBeginner),
		}
		gt.Value(t, matching.RankAndBucket(cands, 15).Len()).Equal(2)
	})

	t.Run("non-positive top k gives empty buckets", func(t *testing.T) {
		cands := []*model.ScoredCandidate{candidate(0, 10, 4, types.LevelBeginner)}
		for _, k := range []int{0, -1} {
			result := matching.RankAndBucket(cands, k)
			gt.Array(t, result.ShortTerm).Length(0)
			gt.Array(t, result.LongTerm).Length(0)
		}
	})

	t.Run("input is not reordered", func(t *testing.T) {
		cands := []*model.ScoredCandidate{
			candidate(0, 10, 4, types.LevelBeginner),
			candidate(1, 90, 4, types.LevelBeginner),
		}
		matching.RankAndBucket(cands, 5)
		gt.Array(t, indexes(cands)).Equal([]int{0, 1})
	})

	t.Run("every candidate lands in exactly one bucket", func(t *testing.T) {
		var cands []*model.ScoredCandidate
		levels := []types.Level{"Beginner", "intermediate", "ADVANCED", "Advanced"}
		for i := range 40 {
			cands = append(cands, candidate(i, (i*37)%101, 1+(i*7)%24, levels[i%len(levels)]))
		}

		result := matching.RankAndBucket(cands, 25)
		gt.Value(t, result.Len()).Equal(25)

		seen := make(map[int]int)
		for _, c := range result.ShortTerm {
			seen[c.Course.Index]++
			gt.Bool(t, c.Course.DurationWeeks <= 12 && !c.Course.Level.IsAdvanced()).True()
		}
		for _, c := range result.LongTerm {
			seen[c.Course.Index]++
			gt.Bool(t, c.Course.DurationWeeks > 12 || c.Course.Level.IsAdvanced()).True()
		}
		gt.Value(t, len(seen)).Equal(25)
		for idx, n := range seen {
			if n != 1 {
				t.Errorf("course %d appears %d times", idx, n)
			}
		}
	})
}

func TestRecommendScenario_HardBlockedLandsInLongTerm(t *testing.T) {
	profile := &model.Profile{Education: "High School", Major: "Mathematics"}
	course := newCourse("deep learning", "python, statistics", "Advanced", 10, []float64{1, 0})

	c, err := matching.Score([]float64{1, 0}, profile, course)
	gt.NoError(t, err).Required()
	gt.Value(t, c.Score).Equal(0)

	result := matching.RankAndBucket([]*model.ScoredCandidate{c}, matching.DefaultTopK)
	gt.Array(t, result.ShortTerm).Length(0)
	gt.Array(t, result.LongTerm).Length(1)
	gt.Value(t, result.LongTerm[0].Score).Equal(0)
}
