package matching_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/coursematch/pkg/domain/model"
	"github.com/secmon-lab/coursematch/pkg/domain/types"
	"github.com/secmon-lab/coursematch/pkg/service/matching"
)

type stubEncoder struct {
	vectors [][]float64
	err     error
	inputs  []string
}

func (s *stubEncoder) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	s.inputs = append(s.inputs, texts...)
	return s.vectors, s.err
}

func (s *stubEncoder) Model() string { return "stub" }

func newCourse(skillTags, prereqs string, level types.Level, weeks int, embedding []float64) *model.Course {
	rec := &model.CourseRecord{
		Title:         "Course",
		Provider:      "Provider",
		SkillTags:     skillTags,
		Description:   "Description",
		Prerequisites: prereqs,
		Level:         level,
		DurationWeeks: weeks,
		Link:          "https://example.com",
	}
	return rec.ToCourse(0, embedding)
}

func TestCosineSimilarity(t *testing.T) {
	testCases := []struct {
		name   string
		a, b   []float64
		expect float64
	}{
		{name: "identical", a: []float64{1, 2, 3}, b: []float64{1, 2, 3}, expect: 1},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, expect: 0},
		{name: "opposite", a: []float64{1, 0}, b: []float64{-2, 0}, expect: -1},
		{name: "zero vector", a: []float64{0, 0}, b: []float64{1, 1}, expect: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sim, err := matching.CosineSimilarity(tc.a, tc.b)
			gt.NoError(t, err).Required()
			gt.Bool(t, math.Abs(sim-tc.expect) < 1e-12).True()
		})
	}

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := matching.CosineSimilarity([]float64{1}, []float64{1, 2})
		gt.Error(t, err).Is(matching.ErrDimensionMismatch)
	})
}

func TestProfileText(t *testing.T) {
	t.Run("full profile", func(t *testing.T) {
		p := &model.Profile{
			Education:       "BSc",
			Major:           "Computer Science",
			TechnicalSkills: []string{"Python", "SQL"},
			SoftSkills:      []string{"Teamwork", "Problem Solving"},
			Interests:       "Machine Learning, AI",
			CareerGoals:     "Become ML Engineer",
		}
		gt.Value(t, matching.ProfileText(p)).Equal(
			"Education: BSc. Major: Computer Science. Technical Skills: Python, SQL. " +
				"Soft Skills: Teamwork, Problem Solving. Interests: Machine Learning, AI. " +
				"Career Goals: Become ML Engineer.")
	})

	t.Run("empty fields keep the template", func(t *testing.T) {
		p := &model.Profile{Education: "High School", Major: "Mathematics"}
		gt.Value(t, matching.ProfileText(p)).Equal(
			"Education: High School. Major: Mathematics. Technical Skills: . Soft Skills: . Interests: . Career Goals: .")
	})
}

func TestVectorize(t *testing.T) {
	t.Run("encodes the profile sentence", func(t *testing.T) {
		enc := &stubEncoder{vectors: [][]float64{{0.1, 0.2}}}
		p := &model.Profile{Education: "MSc", Major: "IT"}

		vec, err := matching.Vectorize(context.Background(), enc, p)
		gt.NoError(t, err).Required()
		gt.Array(t, vec).Length(2)
		gt.Array(t, enc.inputs).Length(1)
		gt.String(t, enc.inputs[0]).Contains("Education: MSc.")
	})

	t.Run("encoder error", func(t *testing.T) {
		enc := &stubEncoder{err: errors.New("quota exceeded")}
		_, err := matching.Vectorize(context.Background(), enc, &model.Profile{})
		gt.Error(t, err)
	})

	t.Run("empty result", func(t *testing.T) {
		enc := &stubEncoder{vectors: [][]float64{}}
		_, err := matching.Vectorize(context.Background(), enc, &model.Profile{})
		gt.Error(t, err)
	})
}

func TestSkillMatchRatio(t *testing.T) {
	testCases := []struct {
		name   string
		user   []string
		tags   []string
		expect float64
	}{
		{name: "two of three", user: []string{"Python", "SQL"}, tags: []string{"python", "sql", "pandas"}, expect: 2.0 / 3.0},
		{name: "case and spaces", user: []string{" PYTHON "}, tags: []string{"Python"}, expect: 1},
		{name: "no tags", user: []string{"Python", "SQL"}, tags: nil, expect: 0},
		{name: "no user skills", user: nil, tags: []string{"docker"}, expect: 0},
		{name: "duplicate user skills count once", user: []string{"go", "Go", "GO"}, tags: []string{"go", "grpc"}, expect: 0.5},
		{name: "user superset", user: []string{"aws", "docker", "kubernetes", "terraform"}, tags: []string{"docker", "kubernetes"}, expect: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, matching.SkillMatchRatio(tc.user, tc.tags)).Equal(tc.expect)
		})
	}

	t.Run("untagged course matches nothing even when the description names the skills", func(t *testing.T) {
		course := newCourse("", "", types.LevelBeginner, 4, []float64{1})
		course.Description = "Python and SQL for analysts"
		gt.Value(t, matching.SkillMatchRatio([]string{"Python", "SQL"}, course.SkillTags)).Equal(0.0)
	})
}

func TestEvaluatePrerequisites(t *testing.T) {
	testCases := []struct {
		name      string
		user      []string
		prereqs   string
		level     types.Level
		missing   []string
		hardBlock bool
	}{
		{
			name:    "no prerequisites",
			prereqs: "", level: types.LevelAdvanced,
			missing: []string{}, hardBlock: false,
		},
		{
			name:    "advanced, all missing",
			prereqs: "python, statistics", level: types.LevelAdvanced,
			missing: []string{"python", "statistics"}, hardBlock: true,
		},
		{
			name:    "advanced, lower-case level, all missing",
			prereqs: "linear algebra", level: "advanced",
			missing: []string{"linear algebra"}, hardBlock: true,
		},
		{
			name: "advanced, partially met",
			user: []string{"Statistics"}, prereqs: "python, statistics", level: types.LevelAdvanced,
			missing: []string{"python"}, hardBlock: false,
		},
		{
			name:    "intermediate, all missing",
			prereqs: "python, sql", level: types.LevelIntermediate,
			missing: []string{"python", "sql"}, hardBlock: false,
		},
		{
			name: "order follows the course",
			user: []string{"b"}, prereqs: "c, b, a", level: types.LevelBeginner,
			missing: []string{"c", "a"}, hardBlock: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			course := newCourse("x", tc.prereqs, tc.level, 10, []float64{1})
			gate := matching.EvaluatePrerequisites(tc.user, course)
			gt.Array(t, gate.Missing).Equal(tc.missing)
			gt.Value(t, gate.HardBlock).Equal(tc.hardBlock)
		})
	}
}

func TestScore(t *testing.T) {
	t.Run("intermediate course with partial skill overlap", func(t *testing.T) {
		profile := &model.Profile{TechnicalSkills: []string{"Python", "SQL"}}
		course := newCourse("python, sql, pandas", "", "Intermediate", 8, []float64{1, 0})

		c, err := matching.Score([]float64{1, 0}, profile, course)
		gt.NoError(t, err).Required()
		gt.Array(t, c.MissingPrereqs).Length(0)
		gt.Bool(t, c.HardBlocked).False()
		gt.Value(t, c.SkillMatch).Equal(66)
		// 0.6*100 + 0.3*66.67 = 80
		gt.Value(t, c.Score).Equal(80)
		gt.Value(t, c.Explanation).Equal(
			"Skill match: 66%. No prereqs missing. Recommended preparation: None.")
	})

	t.Run("hard block forces zero even with perfect similarity and overlap", func(t *testing.T) {
		profile := &model.Profile{TechnicalSkills: []string{"TensorFlow"}}
		course := newCourse("tensorflow", "python, statistics", "Advanced", 16, []float64{1, 0})

		c, err := matching.Score([]float64{1, 0}, profile, course)
		gt.NoError(t, err).Required()
		gt.Bool(t, c.HardBlocked).True()
		gt.Value(t, c.Score).Equal(0)
		gt.Array(t, c.MissingPrereqs).Equal([]string{"python", "statistics"})
		gt.Value(t, c.Explanation).Equal(
			"Skill match: 100%. Missing prereqs: python, statistics Recommended preparation: python, statistics.")
	})

	t.Run("partial prerequisites are penalized, not blocked", func(t *testing.T) {
		profile := &model.Profile{TechnicalSkills: []string{"Python"}}
		course := newCourse("deep learning", "python, statistics", "Advanced", 16, []float64{1, 0})

		c, err := matching.Score([]float64{1, 0}, profile, course)
		gt.NoError(t, err).Required()
		gt.Bool(t, c.HardBlocked).False()
		// 0.6*100 + 0 - 10
		gt.Value(t, c.Score).Equal(50)
	})

	t.Run("penalty is flat regardless of missing count", func(t *testing.T) {
		profile := &model.Profile{}
		one := newCourse("", "a", "Beginner", 4, []float64{1, 0})
		five := newCourse("", "a, b, c, d, e", "Beginner", 4, []float64{1, 0})

		c1, err := matching.Score([]float64{1, 0}, profile, one)
		gt.NoError(t, err).Required()
		c5, err := matching.Score([]float64{1, 0}, profile, five)
		gt.NoError(t, err).Required()
		gt.Value(t, c1.Score).Equal(c5.Score)
		gt.Value(t, c1.Score).Equal(50)
	})

	t.Run("clamps at zero", func(t *testing.T) {
		profile := &model.Profile{}
		course := newCourse("", "docker", "Beginner", 4, []float64{-1, 0})

		c, err := matching.Score([]float64{1, 0}, profile, course)
		gt.NoError(t, err).Required()
		gt.Value(t, c.Score).Equal(0)
		gt.Bool(t, c.HardBlocked).False()
	})

	t.Run("rounds half to even", func(t *testing.T) {
		profile := &model.Profile{TechnicalSkills: []string{"a", "b", "c"}}
		// orthogonal vectors: 0.6*50 = 30
		quarter := newCourse("a, x, y, z", "", "Beginner", 4, []float64{0, 1})
		threeQuarters := newCourse("a, b, c, z", "", "Beginner", 4, []float64{0, 1})

		c, err := matching.Score([]float64{1, 0}, profile, quarter)
		gt.NoError(t, err).Required()
		gt.Value(t, c.Score).Equal(38) // 37.5

		c, err = matching.Score([]float64{1, 0}, profile, threeQuarters)
		gt.NoError(t, err).Required()
		gt.Value(t, c.Score).Equal(52) // 52.5
	})

	t.Run("dimension mismatch is an error", func(t *testing.T) {
		course := newCourse("a", "", "Beginner", 4, []float64{1, 0, 0})
		_, err := matching.Score([]float64{1, 0}, &model.Profile{}, course)
		gt.Error(t, err).Is(matching.ErrDimensionMismatch)
	})

	t.Run("score stays within bounds", func(t *testing.T) {
		skills := [][]string{nil, {"a"}, {"a", "b"}, {"a", "b", "c", "d"}}
		levels := []types.Level{"Beginner", "Intermediate", "Advanced"}
		prereqs := []string{"", "a", "a, b", "z"}
		vectors := [][]float64{{1, 0}, {-1, 0}, {0, 1}, {0.3, -0.7}, {0, 0}}

		for _, us := range skills {
			for _, lv := range levels {
				for _, pr := range prereqs {
					for _, vec := range vectors {
						course := newCourse("a, b, c", pr, lv, 10, vec)
						c, err := matching.Score([]float64{1, 0.2}, &model.Profile{TechnicalSkills: us}, course)
						gt.NoError(t, err).Required()
						name := fmt.Sprintf("%v/%s/%s/%v", us, lv, pr, vec)
						if c.Score < matching.MinScore || c.Score > matching.MaxScore {
							t.Errorf("%s: score %d out of range", name, c.Score)
						}
					}
				}
			}
		}
	})
}

func TestExplain(t *testing.T) {
	gt.Value(t, matching.Explain(0, nil)).
		Equal("Skill match: 0%. No prereqs missing. Recommended preparation: None.")
	gt.Value(t, matching.Explain(50, []string{"sql"})).
		Equal("Skill match: 50%. Missing prereqs: sql Recommended preparation: sql.")
}
