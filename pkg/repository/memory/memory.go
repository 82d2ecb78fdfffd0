package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/secmon-lab/coursematch/pkg/domain/interfaces"
	"github.com/secmon-lab/coursematch/pkg/domain/model"
)

// Memory keeps catalog embeddings for the lifetime of the process
type Memory struct {
	mu         sync.RWMutex
	embeddings map[model.EmbeddingKey]*model.CachedEmbedding
}

var _ interfaces.EmbeddingRepository = &Memory{}

func New() *Memory {
	return &Memory{
		embeddings: make(map[model.EmbeddingKey]*model.CachedEmbedding),
	}
}

func copyEmbedding(e *model.CachedEmbedding) *model.CachedEmbedding {
	return &model.CachedEmbedding{
		Key:       e.Key,
		Model:     e.Model,
		Vector:    slices.Clone(e.Vector),
		CreatedAt: e.CreatedAt,
	}
}

func (m *Memory) GetMany(ctx context.Context, keys []model.EmbeddingKey) (map[model.EmbeddingKey]*model.CachedEmbedding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	found := make(map[model.EmbeddingKey]*model.CachedEmbedding, len(keys))
	for _, key := range keys {
		if e, ok := m.embeddings[key]; ok {
			found[key] = copyEmbedding(e)
		}
	}
	return found, nil
}

func (m *Memory) PutMany(ctx context.Context, embeddings []*model.CachedEmbedding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range embeddings {
		m.embeddings[e.Key] = copyEmbedding(e)
	}
	return nil
}

func (m *Memory) DeleteExceptModel(ctx context.Context, encoderModel string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for key, e := range m.embeddings {
		if e.Model != encoderModel {
			delete(m.embeddings, key)
			deleted++
		}
	}
	return deleted, nil
}

func (m *Memory) DeleteCreatedBefore(ctx context.Context, encoderModel string, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for key, e := range m.embeddings {
		if e.Model == encoderModel && e.CreatedAt.Before(before) {
			delete(m.embeddings, key)
			deleted++
		}
	}
	return deleted, nil
}

func (m *Memory) Close() error {
	return nil
}
