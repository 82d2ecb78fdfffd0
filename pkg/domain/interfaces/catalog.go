package interfaces

import (
	"context"

	"github.com/secmon-lab/coursematch/pkg/domain/model"
)

// CatalogSource reads the raw course catalog. Malformed rows are reported as issues, not errors.
type CatalogSource interface {
	Load(ctx context.Context) ([]*model.CourseRecord, []model.RowIssue, error)

	// String describes the source for logs
	String() string
}
