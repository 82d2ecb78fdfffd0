package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/secmon-lab/coursematch/pkg/domain/interfaces"
	"github.com/secmon-lab/coursematch/pkg/service/encoder"
	"github.com/urfave/cli/v3"
)

const (
	EncoderGemini = "gemini"
	EncoderHash   = "hash"
)

// Encoder holds configuration for the Text Encoder
type Encoder struct {
	kind        string
	projectID   string
	location    string
	model       string
	dimension   int
	batchSize   int
	concurrency int
	timeout     time.Duration
	failures    int
	cooldown    time.Duration
}

// Flags returns CLI flags for Text Encoder configuration
func (e *Encoder) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "encoder",
			Usage:       "Text Encoder (gemini, hash). hash is an offline encoder for development",
			Category:    "Encoder",
			Value:       EncoderGemini,
			Sources:     cli.EnvVars("COURSEMATCH_ENCODER"),
			Destination: &e.kind,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Category:    "Encoder",
			Sources:     cli.EnvVars("COURSEMATCH_GEMINI_PROJECT"),
			Destination: &e.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Category:    "Encoder",
			Value:       "us-central1",
			Sources:     cli.EnvVars("COURSEMATCH_GEMINI_LOCATION"),
			Destination: &e.location,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Usage:       "Gemini embedding model",
			Category:    "Encoder",
			Value:       "text-embedding-004",
			Sources:     cli.EnvVars("COURSEMATCH_EMBEDDING_MODEL"),
			Destination: &e.model,
		},
		&cli.IntFlag{
			Name:        "embedding-dimension",
			Usage:       "Embedding vector length",
			Category:    "Encoder",
			Value:       encoder.DefaultDimension,
			Sources:     cli.EnvVars("COURSEMATCH_EMBEDDING_DIMENSION"),
			Destination: &e.dimension,
		},
		&cli.IntFlag{
			Name:        "embedding-batch-size",
			Usage:       "Texts per encoder call when encoding the catalog",
			Category:    "Encoder",
			Value:       encoder.DefaultBatchSize,
			Sources:     cli.EnvVars("COURSEMATCH_EMBEDDING_BATCH_SIZE"),
			Destination: &e.batchSize,
		},
		&cli.IntFlag{
			Name:        "embedding-concurrency",
			Usage:       "Concurrent encoder calls when encoding the catalog",
			Category:    "Encoder",
			Value:       encoder.DefaultConcurrency,
			Sources:     cli.EnvVars("COURSEMATCH_EMBEDDING_CONCURRENCY"),
			Destination: &e.concurrency,
		},
		&cli.DurationFlag{
			Name:        "encoder-timeout",
			Usage:       "Timeout of a single encoder call",
			Category:    "Encoder",
			Value:       encoder.DefaultTimeout,
			Sources:     cli.EnvVars("COURSEMATCH_ENCODER_TIMEOUT"),
			Destination: &e.timeout,
		},
		&cli.IntFlag{
			Name:        "encoder-breaker-failures",
			Usage:       "Consecutive encoder failures that open the circuit breaker",
			Category:    "Encoder",
			Value:       encoder.DefaultBreakerFailures,
			Sources:     cli.EnvVars("COURSEMATCH_ENCODER_BREAKER_FAILURES"),
			Destination: &e.failures,
		},
		&cli.DurationFlag{
			Name:        "encoder-breaker-cooldown",
			Usage:       "How long the circuit breaker stays open before probing again",
			Category:    "Encoder",
			Value:       encoder.DefaultBreakerCooldown,
			Sources:     cli.EnvVars("COURSEMATCH_ENCODER_BREAKER_COOLDOWN"),
			Destination: &e.cooldown,
		},
	}
}

// LogAttrs returns log attributes for the encoder configuration
func (e *Encoder) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("encoder", e.kind),
		slog.String("project_id", e.projectID),
		slog.String("location", e.location),
		slog.String("model", e.model),
		slog.Int("dimension", e.dimension),
	}
}

// Configure creates the Text Encoder. It is created once per process and shared by the
// catalog build and every request.
func (e *Encoder) Configure(ctx context.Context) (interfaces.TextEncoder, error) {
	switch e.kind {
	case EncoderHash:
		enc, err := encoder.NewHash(e.dimension)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create hash encoder")
		}
		return enc, nil

	case EncoderGemini:
		if e.projectID == "" {
			return nil, goerr.Wrap(ErrMissingProjectID, "gemini-project is required for the gemini encoder")
		}
		client, err := gemini.New(ctx, e.projectID, e.location, gemini.WithEmbeddingModel(e.model))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		enc, err := encoder.NewLLM(client, e.model,
			encoder.WithDimension(e.dimension),
			encoder.WithBatchSize(e.batchSize),
			encoder.WithConcurrency(e.concurrency),
			encoder.WithTimeout(e.timeout),
			encoder.WithBreaker(uint32(max(e.failures, 1)), e.cooldown), // #nosec G115 - bounded below by 1
		)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create LLM encoder")
		}
		return enc, nil

	default:
		return nil, goerr.Wrap(ErrUnknownEncoder, "unsupported encoder", goerr.V(EncoderKey, e.kind))
	}
}
