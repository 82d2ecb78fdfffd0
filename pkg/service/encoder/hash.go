package encoder

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coursematch/pkg/domain/interfaces"
)

// Hash is a deterministic bag-of-words encoder using the signed hashing trick.
// It needs no network and is meant for development, tests and air-gapped demos; its
// similarity only reflects shared words, not meaning.
type Hash struct {
	dimension int
}

var _ interfaces.TextEncoder = &Hash{}

// NewHash creates a hashing encoder producing vectors of the given length
func NewHash(dimension int) (*Hash, error) {
	if dimension <= 0 {
		return nil, goerr.New("embedding dimension must be positive", goerr.V("dimension", dimension))
	}
	return &Hash{dimension: dimension}, nil
}

func (x *Hash) Model() string {
	return fmt.Sprintf("hash/%d", x.dimension)
}

// Encode returns L2-normalized token count vectors. Text without tokens maps to the zero vector.
func (x *Hash) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "encoding cancelled")
		}
		out[i] = x.encode(text)
	}
	return out, nil
}

func (x *Hash) encode(text string) []float64 {
	vec := make([]float64, x.dimension)
	for _, token := range tokenize(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum64()

		sign := 1.0
		if sum&(1<<63) != 0 {
			sign = -1.0
		}
		vec[sum%uint64(x.dimension)] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}
