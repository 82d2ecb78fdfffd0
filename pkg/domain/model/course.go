package model

import (
	"math"
	"strings"

	"github.com/secmon-lab/coursematch/pkg/domain/types"
)

// CourseRecord is one validated row of the catalog source, before encoding.
type CourseRecord struct {
	Line          int // 1-based line in the source, header is line 1
	Title         string
	Provider      string
	SkillTags     string // raw comma-separated column, kept verbatim for the embedding text
	Description   string
	Prerequisites string // raw comma-separated column, may be empty
	Level         types.Level
	DurationWeeks int
	Cost          *float64
	Type          string
	Link          string
}

// EmbeddingText is the text the catalog encodes for this course: "{title} {skill_tags} {description}"
func (r *CourseRecord) EmbeddingText() string {
	return r.Title + " " + r.SkillTags + " " + r.Description
}

// ToCourse converts the record into an indexed Course holding the given embedding
func (r *CourseRecord) ToCourse(index int, embedding []float64) *Course {
	return &Course{
		Index:         index,
		Title:         r.Title,
		Provider:      r.Provider,
		Link:          r.Link,
		SkillTags:     SplitTags(r.SkillTags),
		Prerequisites: SplitSkills(r.Prerequisites),
		Level:         r.Level,
		DurationWeeks: r.DurationWeeks,
		Cost:          r.Cost,
		Type:          r.Type,
		Description:   r.Description,
		Embedding:     embedding,
	}
}

// Course is an entry of the catalog index. It is never mutated after the index is built.
type Course struct {
	Index         int // position in the catalog, used as the ranking tie breaker
	Title         string
	Provider      string
	Link          string
	SkillTags     []string // trimmed, case-insensitively unique, original case kept for display
	Prerequisites []string // trimmed and lower-cased, declared order
	Level         types.Level
	DurationWeeks int
	Cost          *float64
	Type          string
	Description   string
	Embedding     []float64
}

// CostPerWeek returns cost divided by duration, rounded to cents.
// ok is false when the cost is unknown or the duration is not positive.
func (c *Course) CostPerWeek() (float64, bool) {
	if c.Cost == nil || c.DurationWeeks <= 0 {
		return 0, false
	}
	return math.Round(*c.Cost/float64(c.DurationWeeks)*100) / 100, true
}

// SplitTags splits a comma-separated column, trimming entries and dropping empty and
// case-insensitive duplicates. The first spelling of a tag wins.
func SplitTags(column string) []string {
	var tags []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(column, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		key := NormalizeSkill(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// SplitSkills is SplitTags with every entry normalized
func SplitSkills(column string) []string {
	tags := SplitTags(column)
	for i := range tags {
		tags[i] = NormalizeSkill(tags[i])
	}
	return tags
}

// NormalizeSkill is the canonical comparison form of a skill name
func NormalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
