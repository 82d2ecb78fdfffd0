package encoder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/coursematch/pkg/domain/interfaces"
	"github.com/secmon-lab/coursematch/pkg/utils/logging"
	"github.com/secmon-lab/coursematch/pkg/utils/metrics"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultDimension   = 768
	DefaultBatchSize   = 100
	DefaultTimeout     = 30 * time.Second
	DefaultConcurrency = 4

	DefaultBreakerFailures = 5
	DefaultBreakerCooldown = 30 * time.Second
)

// LLM encodes text with the embedding endpoint of an LLM client.
// Every call is bounded by a timeout and goes through a circuit breaker, so an unhealthy
// endpoint fails requests quickly instead of stalling them.
type LLM struct {
	client      gollem.LLMClient
	model       string
	dimension   int
	batchSize   int
	timeout     time.Duration
	concurrency int

	breakerFailures uint32
	breakerCooldown time.Duration
	breaker         *gobreaker.CircuitBreaker[[][]float64]
}

var _ interfaces.TextEncoder = &LLM{}

// Option is a functional option for LLM configuration
type Option func(*LLM)

// WithDimension sets the requested embedding length
func WithDimension(dim int) Option {
	return func(x *LLM) {
		x.dimension = dim
	}
}

// WithBatchSize sets the number of texts sent in one embedding call
func WithBatchSize(n int) Option {
	return func(x *LLM) {
		x.batchSize = n
	}
}

// WithTimeout bounds every embedding call
func WithTimeout(d time.Duration) Option {
	return func(x *LLM) {
		x.timeout = d
	}
}

// WithConcurrency sets how many batches are in flight at once
func WithConcurrency(n int) Option {
	return func(x *LLM) {
		x.concurrency = n
	}
}

// WithBreaker opens the circuit after failures consecutive errors and probes again after cooldown
func WithBreaker(failures uint32, cooldown time.Duration) Option {
	return func(x *LLM) {
		x.breakerFailures = failures
		x.breakerCooldown = cooldown
	}
}

// NewLLM creates an encoder backed by client. model names the embedding model and is
// used to namespace cached embeddings.
func NewLLM(client gollem.LLMClient, model string, opts ...Option) (*LLM, error) {
	if client == nil {
		return nil, goerr.New("LLM client is required")
	}
	if model == "" {
		return nil, goerr.New("embedding model name is required")
	}

	x := &LLM{
		client:          client,
		model:           model,
		dimension:       DefaultDimension,
		batchSize:       DefaultBatchSize,
		timeout:         DefaultTimeout,
		concurrency:     DefaultConcurrency,
		breakerFailures: DefaultBreakerFailures,
		breakerCooldown: DefaultBreakerCooldown,
	}
	for _, opt := range opts {
		opt(x)
	}

	if x.dimension <= 0 {
		return nil, goerr.New("embedding dimension must be positive", goerr.V("dimension", x.dimension))
	}
	if x.batchSize <= 0 {
		return nil, goerr.New("batch size must be positive", goerr.V("batch_size", x.batchSize))
	}
	if x.concurrency <= 0 {
		x.concurrency = 1
	}

	x.breaker = gobreaker.NewCircuitBreaker[[][]float64](gobreaker.Settings{
		Name:        "encoder:" + model,
		MaxRequests: 1,
		Timeout:     x.breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= x.breakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Default().Warn("Text encoder circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.EncoderBreakerState.WithLabelValues(model).Set(float64(to))
		},
	})

	return x, nil
}

// Model returns the embedding model name with its dimension
func (x *LLM) Model() string {
	return fmt.Sprintf("%s/%d", x.model, x.dimension)
}

// Encode embeds texts in batches. The whole call fails if any batch fails.
func (x *LLM) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	out := make([][]float64, len(texts))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(x.concurrency)

	for start := 0; start < len(texts); start += x.batchSize {
		end := min(start+x.batchSize, len(texts))
		eg.Go(func() error {
			vectors, err := x.encodeBatch(ctx, texts[start:end])
			if err != nil {
				return goerr.Wrap(err, "failed to encode batch",
					goerr.V("offset", start), goerr.V("size", end-start))
			}
			copy(out[start:end], vectors)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (x *LLM) encodeBatch(ctx context.Context, batch []string) ([][]float64, error) {
	started := time.Now()

	vectors, err := x.breaker.Execute(func() ([][]float64, error) {
		callCtx, cancel := context.WithTimeout(ctx, x.timeout)
		defer cancel()

		vectors, err := x.client.GenerateEmbedding(callCtx, x.dimension, batch)
		if err != nil {
			return nil, goerr.Wrap(err, "embedding request failed", goerr.V("model", x.model))
		}
		if len(vectors) != len(batch) {
			return nil, goerr.New("embedding count does not match input",
				goerr.V("expected", len(batch)), goerr.V("actual", len(vectors)))
		}
		for i, v := range vectors {
			if len(v) == 0 {
				return nil, goerr.New("empty embedding returned", goerr.V("position", i))
			}
		}
		return vectors, nil
	})

	status := "ok"
	if err != nil {
		status = "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			status = "rejected"
			err = goerr.Wrap(ErrUnavailable, "text encoder circuit is open", goerr.V("model", x.model))
		}
	}
	metrics.EncoderRequestDuration.WithLabelValues(x.model, status).Observe(time.Since(started).Seconds())

	return vectors, err
}
