package types

import "strings"

// Level is the difficulty label of a course as written in the catalog.
// Matching is case-insensitive; only LevelAdvanced changes gating and bucketing.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// IsAdvanced reports whether the level is "advanced", ignoring case and surrounding spaces
func (l Level) IsAdvanced() bool {
	return strings.EqualFold(strings.TrimSpace(string(l)), string(LevelAdvanced))
}

// IsKnown reports whether the level is one of the three catalog levels
func (l Level) IsKnown() bool {
	v := strings.TrimSpace(string(l))
	for _, known := range []Level{LevelBeginner, LevelIntermediate, LevelAdvanced} {
		if strings.EqualFold(v, string(known)) {
			return true
		}
	}
	return false
}

// String returns the string representation of Level
func (l Level) String() string {
	return string(l)
}
