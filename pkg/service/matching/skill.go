package matching

import "github.com/secmon-lab/coursematch/pkg/domain/model"

// SkillMatchRatio is the share of the course's skill tags the learner already has.
// The denominator is the course's distinct tag count, so the ratio measures coverage from
// the course's side. A course without tags has ratio 0.
func SkillMatchRatio(userSkills, courseTags []string) float64 {
	tags := make(map[string]struct{}, len(courseTags))
	for _, tag := range courseTags {
		if n := model.NormalizeSkill(tag); n != "" {
			tags[n] = struct{}{}
		}
	}
	if len(tags) == 0 {
		return 0
	}

	matched := make(map[string]struct{})
	for _, skill := range userSkills {
		n := model.NormalizeSkill(skill)
		if _, ok := tags[n]; ok {
			matched[n] = struct{}{}
		}
	}
	return float64(len(matched)) / float64(len(tags))
}
