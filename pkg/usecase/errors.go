package usecase

import (
	"errors"

	"github.com/secmon-lab/coursematch/pkg/domain/model"
)

// Sentinel errors for use case layer
var (
	// ErrCatalogNotReady is returned before the first successful catalog build
	ErrCatalogNotReady = errors.New("catalog index is not ready")

	// ErrRebuildInProgress is returned when a rebuild is requested while another is running
	ErrRebuildInProgress = errors.New("catalog rebuild already in progress")

	ErrInvalidProfile = model.ErrInvalidProfile
	ErrPresetNotFound = model.ErrPresetNotFound
)

// Context keys for error values
const (
	SourceKey  = "source"
	EncoderKey = "encoder"
	TopKKey    = "top_k"
)
