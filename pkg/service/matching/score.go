package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coursematch/pkg/domain/model"
)

// Blend weights. MissingPrereqPenalty is flat: one missing prerequisite costs as much as five.
// It is a tuning target, and changing it changes rankings.
const (
	CosineWeight         = 0.6
	SkillWeight          = 0.3
	MissingPrereqPenalty = 10.0

	MinScore = 0
	MaxScore = 100
)

// Score blends semantic similarity, skill coverage and the prerequisite gate into one
// integer in [0, 100]. Rounding is half to even.
func Score(profileVec []float64, profile *model.Profile, course *model.Course) (*model.ScoredCandidate, error) {
	if course == nil {
		return nil, goerr.New("course is nil")
	}

	cos, err := CosineSimilarity(profileVec, course.Embedding)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compare profile with course",
			goerr.V(model.CourseKey, course.Title))
	}
	scoreCosine := (cos + 1) * 50

	skillMatchScore := SkillMatchRatio(profile.TechnicalSkills, course.SkillTags) * 100

	gate := EvaluatePrerequisites(profile.TechnicalSkills, course)

	var final float64
	if gate.HardBlock {
		final = 0
	} else {
		final = CosineWeight*scoreCosine + SkillWeight*skillMatchScore
		if len(gate.Missing) > 0 {
			final -= MissingPrereqPenalty
		}
		final = math.Max(MinScore, math.Min(MaxScore, final))
	}

	return &model.ScoredCandidate{
		Course:         course,
		Score:          int(math.RoundToEven(final)),
		SkillMatch:     int(skillMatchScore),
		Similarity:     cos,
		HardBlocked:    gate.HardBlock,
		MissingPrereqs: gate.Missing,
		Explanation:    Explain(skillMatchScore, gate.Missing),
	}, nil
}

// Explain renders the justification shown next to a recommendation
func Explain(skillMatchScore float64, missing []string) string {
	prereqs := "No prereqs missing."
	preparation := "None"
	if len(missing) > 0 {
		joined := strings.Join(missing, ", ")
		prereqs = "Missing prereqs: " + joined
		preparation = joined
	}
	return fmt.Sprintf("Skill match: %d%%. %s Recommended preparation: %s.",
		int(skillMatchScore), prereqs, preparation)
}
