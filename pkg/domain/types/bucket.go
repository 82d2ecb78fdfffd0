package types

// Bucket is the output group a ranked candidate lands in
type Bucket string

const (
	BucketShortTerm Bucket = "short_term"
	BucketLongTerm  Bucket = "long_term"
)

// ShortTermMaxWeeks is the longest duration a non-advanced course may have to be short-term
const ShortTermMaxWeeks = 12

// BucketFor classifies a course by duration and level. Every input maps to exactly one bucket.
func BucketFor(durationWeeks int, level Level) Bucket {
	if durationWeeks <= ShortTermMaxWeeks && !level.IsAdvanced() {
		return BucketShortTerm
	}
	return BucketLongTerm
}

// String returns the string representation of Bucket
func (b Bucket) String() string {
	return string(b)
}
