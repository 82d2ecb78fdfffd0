package model

import (
	"time"

	"github.com/google/uuid"
)

// ScoredCandidate is one course scored against one profile
type ScoredCandidate struct {
	Course         *Course
	Score          int // 0..100
	SkillMatch     int // integer percent, truncated
	Similarity     float64
	HardBlocked    bool
	MissingPrereqs []string
	Explanation    string
}

// ExcludedCourse is a course left out of a result because scoring it failed
type ExcludedCourse struct {
	Title  string
	Index  int
	Reason string
}

// RecommendationResult is the ranked, bucketed output of one request
type RecommendationResult struct {
	ID          string
	ShortTerm   []*ScoredCandidate
	LongTerm    []*ScoredCandidate
	Excluded    []ExcludedCourse
	CatalogSize int
	GeneratedAt time.Time
}

// NewRecommendationResult returns an empty result with a fresh ID
func NewRecommendationResult() *RecommendationResult {
	return &RecommendationResult{
		ID:          uuid.NewString(),
		ShortTerm:   []*ScoredCandidate{},
		LongTerm:    []*ScoredCandidate{},
		Excluded:    []ExcludedCourse{},
		GeneratedAt: time.Now().UTC(),
	}
}

// Len returns the number of recommended courses across both buckets
func (r *RecommendationResult) Len() int {
	return len(r.ShortTerm) + len(r.LongTerm)
}
