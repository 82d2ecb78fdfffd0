package interfaces

import "context"

// TextEncoder maps text to fixed-length vectors. It must be deterministic for a given Model.
type TextEncoder interface {
	// Encode returns one vector per input text, in input order
	Encode(ctx context.Context, texts []string) ([][]float64, error)

	// Model names the encoder and its version; it namespaces cached embeddings
	Model() string
}
