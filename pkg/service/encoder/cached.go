package encoder

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coursematch/pkg/domain/interfaces"
	"github.com/secmon-lab/coursematch/pkg/domain/model"
	"github.com/secmon-lab/coursematch/pkg/utils/logging"
	"github.com/secmon-lab/coursematch/pkg/utils/metrics"
)

// Cached wraps an encoder with an embedding repository. Only texts missing from the
// repository reach the wrapped encoder. Repository failures degrade to encoding everything.
type Cached struct {
	base interfaces.TextEncoder
	repo interfaces.EmbeddingRepository
}

var _ interfaces.TextEncoder = &Cached{}

// NewCached creates a caching encoder. A nil repo disables caching.
func NewCached(base interfaces.TextEncoder, repo interfaces.EmbeddingRepository) *Cached {
	return &Cached{base: base, repo: repo}
}

func (x *Cached) Model() string {
	return x.base.Model()
}

func (x *Cached) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	if x.repo == nil || len(texts) == 0 {
		return x.base.Encode(ctx, texts)
	}

	encoderModel := x.base.Model()
	keys := make([]model.EmbeddingKey, len(texts))
	for i, text := range texts {
		keys[i] = model.NewEmbeddingKey(encoderModel, text)
	}

	cached, err := x.repo.GetMany(ctx, keys)
	if err != nil {
		logging.From(ctx).Warn("Embedding cache lookup failed, encoding all texts",
			"error", err.Error(),
			"count", len(texts),
		)
		cached = nil
	}

	out := make([][]float64, len(texts))
	var missTexts []string
	missPositions := make(map[model.EmbeddingKey][]int)
	for i, key := range keys {
		if hit, ok := cached[key]; ok && len(hit.Vector) > 0 {
			out[i] = hit.Vector
			continue
		}
		if _, queued := missPositions[key]; !queued {
			missTexts = append(missTexts, texts[i])
		}
		missPositions[key] = append(missPositions[key], i)
	}

	metrics.EmbeddingCacheLookups.WithLabelValues("hit").Add(float64(len(texts) - countPositions(missPositions)))
	metrics.EmbeddingCacheLookups.WithLabelValues("miss").Add(float64(countPositions(missPositions)))

	if len(missTexts) == 0 {
		return out, nil
	}

	vectors, err := x.base.Encode(ctx, missTexts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode uncached texts", goerr.V("count", len(missTexts)))
	}
	if len(vectors) != len(missTexts) {
		return nil, goerr.New("embedding count does not match input",
			goerr.V("expected", len(missTexts)), goerr.V("actual", len(vectors)))
	}

	now := time.Now().UTC()
	entries := make([]*model.CachedEmbedding, len(missTexts))
	for i, text := range missTexts {
		key := model.NewEmbeddingKey(encoderModel, text)
		for _, pos := range missPositions[key] {
			out[pos] = vectors[i]
		}
		entries[i] = &model.CachedEmbedding{
			Key:       key,
			Model:     encoderModel,
			Vector:    vectors[i],
			CreatedAt: now,
		}
	}

	if err := x.repo.PutMany(ctx, entries); err != nil {
		logging.From(ctx).Warn("Failed to store embeddings in cache",
			"error", err.Error(),
			"count", len(entries),
		)
	}

	return out, nil
}

func countPositions(m map[model.EmbeddingKey][]int) int {
	n := 0
	for _, positions := range m {
		n += len(positions)
	}
	return n
}
