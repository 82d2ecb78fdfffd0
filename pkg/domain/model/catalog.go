package model

import (
	"slices"
	"strings"
	"time"
)

// RowIssue describes a catalog row that was dropped while loading
type RowIssue struct {
	Line   int
	Title  string
	Reason string
}

// CatalogIndex is the encoded catalog. It is built once and shared read-only by every
// request; rebuilding produces a new index instead of changing this one.
type CatalogIndex struct {
	courses   []*Course
	issues    []RowIssue
	source    string
	encoder   string
	builtAt   time.Time
	skills    []string
	dimension int
}

// NewCatalogIndex assembles an index. Course.Index must already match the slice position.
func NewCatalogIndex(courses []*Course, issues []RowIssue, source, encoder string, builtAt time.Time) *CatalogIndex {
	idx := &CatalogIndex{
		courses: slices.Clone(courses),
		issues:  slices.Clone(issues),
		source:  source,
		encoder: encoder,
		builtAt: builtAt,
	}

	seen := make(map[string]struct{})
	for _, c := range idx.courses {
		if idx.dimension == 0 {
			idx.dimension = len(c.Embedding)
		}
		for _, tag := range c.SkillTags {
			key := NormalizeSkill(tag)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			idx.skills = append(idx.skills, tag)
		}
	}
	slices.SortFunc(idx.skills, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})

	return idx
}

// Courses returns the indexed courses in catalog order. Callers must not modify them.
func (x *CatalogIndex) Courses() []*Course { return x.courses }

// Len returns the number of indexed courses
func (x *CatalogIndex) Len() int { return len(x.courses) }

// Issues returns the rows dropped while loading the catalog
func (x *CatalogIndex) Issues() []RowIssue { return x.issues }

// Source describes where the catalog was read from
func (x *CatalogIndex) Source() string { return x.source }

// Encoder is the Text Encoder model the embeddings were produced with
func (x *CatalogIndex) Encoder() string { return x.encoder }

func (x *CatalogIndex) BuiltAt() time.Time { return x.builtAt }

// Dimension is the embedding length, 0 for an empty catalog
func (x *CatalogIndex) Dimension() int { return x.dimension }

// Skills is the technical skill vocabulary of the catalog, sorted case-insensitively
func (x *CatalogIndex) Skills() []string { return x.skills }
