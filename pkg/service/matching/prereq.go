package matching

import "github.com/secmon-lab/coursematch/pkg/domain/model"

// Gate is the prerequisite decision for one course and one learner
type Gate struct {
	// Missing lists unmet prerequisites in the course's declared order
	Missing []string
	// HardBlock forces the score to 0: the course is advanced, declares prerequisites
	// and the learner meets none of them
	HardBlock bool
}

// EvaluatePrerequisites compares course prerequisites with the learner's technical skills
func EvaluatePrerequisites(userSkills []string, course *model.Course) Gate {
	have := make(map[string]struct{}, len(userSkills))
	for _, s := range userSkills {
		have[model.NormalizeSkill(s)] = struct{}{}
	}

	missing := []string{}
	for _, p := range course.Prerequisites {
		if _, ok := have[model.NormalizeSkill(p)]; !ok {
			missing = append(missing, p)
		}
	}

	return Gate{
		Missing: missing,
		HardBlock: course.Level.IsAdvanced() &&
			len(course.Prerequisites) > 0 &&
			len(missing) == len(course.Prerequisites),
	}
}
