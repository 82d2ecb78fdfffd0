package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coursematch/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GetAll accepts at most this many references per call
const maxGetAll = 300

type embeddingDoc struct {
	Key       string             `firestore:"Key"`
	Model     string             `firestore:"Model"`
	Vector    firestore.Vector64 `firestore:"Vector"`
	CreatedAt time.Time          `firestore:"CreatedAt"`
}

func toEmbeddingDoc(e *model.CachedEmbedding) *embeddingDoc {
	return &embeddingDoc{
		Key:       string(e.Key),
		Model:     e.Model,
		Vector:    firestore.Vector64(e.Vector),
		CreatedAt: e.CreatedAt,
	}
}

func fromEmbeddingDoc(d *embeddingDoc) *model.CachedEmbedding {
	return &model.CachedEmbedding{
		Key:       model.EmbeddingKey(d.Key),
		Model:     d.Model,
		Vector:    []float64(d.Vector),
		CreatedAt: d.CreatedAt,
	}
}

func (f *Firestore) GetMany(ctx context.Context, keys []model.EmbeddingKey) (map[model.EmbeddingKey]*model.CachedEmbedding, error) {
	found := make(map[model.EmbeddingKey]*model.CachedEmbedding, len(keys))

	for start := 0; start < len(keys); start += maxGetAll {
		end := min(start+maxGetAll, len(keys))

		refs := make([]*firestore.DocumentRef, 0, end-start)
		for _, key := range keys[start:end] {
			refs = append(refs, f.collection().Doc(string(key)))
		}

		snaps, err := f.client.GetAll(ctx, refs)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get embeddings", goerr.V("count", len(refs)))
		}

		for _, snap := range snaps {
			if !snap.Exists() {
				continue
			}
			var d embeddingDoc
			if err := snap.DataTo(&d); err != nil {
				return nil, goerr.Wrap(err, "failed to unmarshal embedding", goerr.V("id", snap.Ref.ID))
			}
			e := fromEmbeddingDoc(&d)
			found[e.Key] = e
		}
	}

	return found, nil
}

func (f *Firestore) PutMany(ctx context.Context, embeddings []*model.CachedEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}

	bw := f.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(embeddings))
	for _, e := range embeddings {
		job, err := bw.Set(f.collection().Doc(string(e.Key)), toEmbeddingDoc(e))
		if err != nil {
			bw.End()
			return goerr.Wrap(err, "failed to enqueue embedding", goerr.V("key", e.Key))
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return goerr.Wrap(err, "failed to store embedding", goerr.V("key", embeddings[i].Key))
		}
	}
	return nil
}

func (f *Firestore) DeleteExceptModel(ctx context.Context, encoderModel string) (int, error) {
	q := f.collection().Where("Model", "!=", encoderModel)
	deleted, err := f.deleteAll(ctx, q)
	if err != nil {
		return deleted, goerr.Wrap(err, "failed to delete embeddings of other models", goerr.V("model", encoderModel))
	}
	return deleted, nil
}

// DeleteCreatedBefore needs the composite index (Model ASC, CreatedAt ASC) created by the
// migrate command.
func (f *Firestore) DeleteCreatedBefore(ctx context.Context, encoderModel string, before time.Time) (int, error) {
	q := f.collection().
		Where("Model", "==", encoderModel).
		Where("CreatedAt", "<", before)
	deleted, err := f.deleteAll(ctx, q)
	if err != nil {
		return deleted, goerr.Wrap(err, "failed to delete old embeddings",
			goerr.V("model", encoderModel), goerr.V("before", before))
	}
	return deleted, nil
}

func (f *Firestore) deleteAll(ctx context.Context, q firestore.Query) (int, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	bw := f.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			bw.End()
			return 0, goerr.Wrap(err, "failed to iterate embeddings")
		}

		job, err := bw.Delete(doc.Ref)
		if err != nil {
			bw.End()
			return 0, goerr.Wrap(err, "failed to enqueue embedding deletion", goerr.V("id", doc.Ref.ID))
		}
		jobs = append(jobs, job)
	}
	bw.End()

	deleted := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			// removed by a concurrent prune
			if status.Code(err) == codes.NotFound {
				continue
			}
			return deleted, goerr.Wrap(err, "failed to delete embedding")
		}
		deleted++
	}
	return deleted, nil
}
