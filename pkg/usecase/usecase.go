package usecase

import (
	"runtime"

	"github.com/secmon-lab/coursematch/pkg/domain/interfaces"
	"github.com/secmon-lab/coursematch/pkg/domain/model"
	"github.com/secmon-lab/coursematch/pkg/service/encoder"
	"github.com/secmon-lab/coursematch/pkg/service/matching"
)

type UseCases struct {
	source     interfaces.CatalogSource
	encoder    interfaces.TextEncoder
	embeddings interfaces.EmbeddingRepository
	options    model.ProfileOptions
	presets    *model.PresetRegistry
	topK       int
	workers    int

	Catalog   *CatalogUseCase
	Recommend *RecommendUseCase
	Profile   *ProfileUseCase
}

type Option func(*UseCases)

// WithEmbeddingRepository caches catalog embeddings across builds
func WithEmbeddingRepository(repo interfaces.EmbeddingRepository) Option {
	return func(uc *UseCases) {
		uc.embeddings = repo
	}
}

func WithProfileOptions(opts model.ProfileOptions) Option {
	return func(uc *UseCases) {
		uc.options = opts
	}
}

func WithPresets(presets *model.PresetRegistry) Option {
	return func(uc *UseCases) {
		uc.presets = presets
	}
}

// WithTopK sets the number of recommendations used when a request does not specify one
func WithTopK(n int) Option {
	return func(uc *UseCases) {
		uc.topK = n
	}
}

// WithWorkers limits how many courses are scored concurrently
func WithWorkers(n int) Option {
	return func(uc *UseCases) {
		uc.workers = n
	}
}

// New wires the use cases. The encoder is shared: catalog builds go through the embedding
// cache, profile vectors never do.
func New(source interfaces.CatalogSource, enc interfaces.TextEncoder, opts ...Option) *UseCases {
	uc := &UseCases{
		source:  source,
		encoder: enc,
		topK:    matching.DefaultTopK,
		workers: runtime.GOMAXPROCS(0),
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.presets == nil {
		uc.presets = model.NewPresetRegistry()
	}
	if uc.workers <= 0 {
		uc.workers = 1
	}

	uc.Catalog = NewCatalogUseCase(source, encoder.NewCached(enc, uc.embeddings))
	uc.Recommend = NewRecommendUseCase(uc.Catalog, enc, uc.options, uc.topK, uc.workers)
	uc.Profile = NewProfileUseCase(uc.Catalog, uc.options, uc.presets)

	return uc
}
