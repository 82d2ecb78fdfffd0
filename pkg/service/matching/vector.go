package matching

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
)

// ErrDimensionMismatch is returned when two embeddings have different lengths
var ErrDimensionMismatch = goerr.New("embedding dimension mismatch")

// CosineSimilarity returns the cosine of the angle between a and b, in [-1, 1].
// A zero vector has similarity 0 with anything.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, goerr.Wrap(ErrDimensionMismatch, "cannot compare embeddings",
			goerr.V("left", len(a)), goerr.V("right", len(b)))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) {
		return 0, goerr.New("cosine similarity is NaN")
	}
	// float error can push |sim| slightly above 1
	return math.Max(-1, math.Min(1, sim)), nil
}
