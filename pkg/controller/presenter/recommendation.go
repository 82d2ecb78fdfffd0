// Package presenter renders recommendation results for the HTTP API and the CLI.
package presenter

import (
	"time"

	"github.com/secmon-lab/coursematch/pkg/domain/model"
)

// NotAvailable replaces values that cannot be computed, such as cost per week without a cost
const NotAvailable = "N/A"

type Course struct {
	Title          string   `json:"title"`
	Provider       string   `json:"provider"`
	Score          int      `json:"score"`
	SkillMatch     int      `json:"skill_match"`
	Level          string   `json:"level"`
	DurationWeeks  int      `json:"duration_weeks"`
	MissingPrereqs []string `json:"missing_prereqs"`
	Cost           *float64 `json:"cost"`
	// CostPerWeek is a number, or NotAvailable
	CostPerWeek any    `json:"cost_per_week"`
	Type        string `json:"type"`
	Explanation string `json:"explanation"`
	Link        string `json:"link"`
}

type Excluded struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

type Recommendation struct {
	ID          string     `json:"id"`
	ShortTerm   []Course   `json:"short_term"`
	LongTerm    []Course   `json:"long_term"`
	Excluded    []Excluded `json:"excluded"`
	CatalogSize int        `json:"catalog_size"`
	GeneratedAt time.Time  `json:"generated_at"`
}

func NewRecommendation(result *model.RecommendationResult) *Recommendation {
	resp := &Recommendation{
		ID:          result.ID,
		ShortTerm:   NewCourses(result.ShortTerm),
		LongTerm:    NewCourses(result.LongTerm),
		Excluded:    make([]Excluded, len(result.Excluded)),
		CatalogSize: result.CatalogSize,
		GeneratedAt: result.GeneratedAt,
	}
	for i, ex := range result.Excluded {
		resp.Excluded[i] = Excluded{Title: ex.Title, Reason: ex.Reason}
	}
	return resp
}

func NewCourses(candidates []*model.ScoredCandidate) []Course {
	courses := make([]Course, len(candidates))
	for i, c := range candidates {
		courses[i] = NewCourse(c)
	}
	return courses
}

func NewCourse(c *model.ScoredCandidate) Course {
	missing := c.MissingPrereqs
	if missing == nil {
		missing = []string{}
	}
	return Course{
		Title:          c.Course.Title,
		Provider:       c.Course.Provider,
		Score:          c.Score,
		SkillMatch:     c.SkillMatch,
		Level:          c.Course.Level.String(),
		DurationWeeks:  c.Course.DurationWeeks,
		MissingPrereqs: missing,
		Cost:           c.Course.Cost,
		CostPerWeek:    CostPerWeek(c.Course),
		Type:           c.Course.Type,
		Explanation:    c.Explanation,
		Link:           c.Course.Link,
	}
}

// CostPerWeek returns the rounded weekly cost, or NotAvailable
func CostPerWeek(c *model.Course) any {
	v, ok := c.CostPerWeek()
	if !ok {
		return NotAvailable
	}
	return v
}
