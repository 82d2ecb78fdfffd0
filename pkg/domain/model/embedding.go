package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// EmbeddingKey identifies a cached embedding by encoder model and input text
type EmbeddingKey string

// NewEmbeddingKey derives the cache key of text encoded with model
func NewEmbeddingKey(model, text string) EmbeddingKey {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return EmbeddingKey(hex.EncodeToString(sum[:]))
}

// CachedEmbedding is a catalog embedding kept between builds
type CachedEmbedding struct {
	Key       EmbeddingKey
	Model     string
	Vector    []float64
	CreatedAt time.Time
}
