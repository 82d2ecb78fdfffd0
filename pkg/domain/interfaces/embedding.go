package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/coursematch/pkg/domain/model"
)

// EmbeddingRepository stores catalog embeddings between index builds
type EmbeddingRepository interface {
	// GetMany returns the cached embeddings found for keys; missing keys are absent from the map
	GetMany(ctx context.Context, keys []model.EmbeddingKey) (map[model.EmbeddingKey]*model.CachedEmbedding, error)

	// PutMany stores embeddings, overwriting entries with the same key
	PutMany(ctx context.Context, embeddings []*model.CachedEmbedding) error

	// DeleteExceptModel removes entries produced by any other encoder model and returns how many were removed
	DeleteExceptModel(ctx context.Context, encoderModel string) (int, error)

	// DeleteCreatedBefore removes entries of encoderModel stored before the given time
	DeleteCreatedBefore(ctx context.Context, encoderModel string, before time.Time) (int, error)

	Close() error
}
