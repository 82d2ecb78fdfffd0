package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coursematch/pkg/domain/interfaces"
)

const defaultEmbeddingCollection = "embeddings"

// Firestore stores catalog embeddings in one collection, one document per embedding key
type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.EmbeddingRepository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces the collection, e.g. per environment or per test run
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

// New connects to Firestore. An empty databaseID selects the default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID == "" {
		client, err = firestore.NewClient(ctx, projectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// EmbeddingCollection returns the embedding collection name for a prefix
func EmbeddingCollection(prefix string) string {
	return prefix + defaultEmbeddingCollection
}

func (f *Firestore) collection() *firestore.CollectionRef {
	return f.client.Collection(EmbeddingCollection(f.collectionPrefix))
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
