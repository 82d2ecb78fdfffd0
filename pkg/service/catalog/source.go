package catalog

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coursematch/pkg/domain/interfaces"
	"github.com/secmon-lab/coursematch/pkg/domain/model"
	"github.com/secmon-lab/coursematch/pkg/utils/safe"
)

const gcsScheme = "gs://"

type opener func(ctx context.Context) (io.ReadCloser, error)

// Source loads a CSV catalog from a local file or a Cloud Storage object
type Source struct {
	location string
	open     opener
	closer   func() error
}

var _ interfaces.CatalogSource = &Source{}

// NewFileSource reads the catalog from a local path
func NewFileSource(path string) *Source {
	return &Source{
		location: path,
		open: func(ctx context.Context) (io.ReadCloser, error) {
			// #nosec G304 - path is provided by CLI argument
			f, err := os.Open(filepath.Clean(path))
			if err != nil {
				return nil, goerr.Wrap(err, "failed to open catalog file", goerr.V("path", path))
			}
			return f, nil
		},
	}
}

// NewGCSSource reads the catalog from gs://bucket/object with an existing client
func NewGCSSource(client *storage.Client, bucket, object string) *Source {
	return &Source{
		location: gcsScheme + bucket + "/" + object,
		open: func(ctx context.Context) (io.ReadCloser, error) {
			r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to open catalog object",
					goerr.V("bucket", bucket), goerr.V("object", object))
			}
			return r, nil
		},
	}
}

// NewSource picks the backend from the location: gs://bucket/object or a local path.
// Close must be called to release the storage client.
func NewSource(ctx context.Context, location string) (*Source, error) {
	if location == "" {
		return nil, goerr.New("catalog location is required")
	}
	if !strings.HasPrefix(location, gcsScheme) {
		return NewFileSource(location), nil
	}

	bucket, object, ok := strings.Cut(strings.TrimPrefix(location, gcsScheme), "/")
	if !ok || bucket == "" || object == "" {
		return nil, goerr.New("invalid Cloud Storage location, expected gs://bucket/object",
			goerr.V("location", location))
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}
	src := NewGCSSource(client, bucket, object)
	src.closer = client.Close
	return src, nil
}

// Load reads and parses the whole catalog
func (s *Source) Load(ctx context.Context) ([]*model.CourseRecord, []model.RowIssue, error) {
	rc, err := s.open(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer safe.Close(ctx, rc)

	records, issues, err := Parse(rc)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to parse catalog", goerr.V("source", s.location))
	}
	return records, issues, nil
}

func (s *Source) String() string {
	return s.location
}

func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
