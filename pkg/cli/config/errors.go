package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound   = goerr.New("configuration file not found")
	ErrInvalidConfig    = goerr.New("invalid configuration")
	ErrDuplicatePreset  = goerr.New("duplicate preset ID")
	ErrInvalidPresetID  = goerr.New("invalid preset ID format")
	ErrMissingName      = goerr.New("name is required")
	ErrUnknownEncoder   = goerr.New("unknown encoder")
	ErrUnknownBackend   = goerr.New("unknown repository backend")
	ErrMissingProjectID = goerr.New("Google Cloud project ID is required")
)

// Context keys for error values
const (
	ConfigPathKey  = "config_path"
	PresetIDKey    = "preset_id"
	PresetIndexKey = "preset_index"
	EncoderKey     = "encoder"
	BackendKey     = "backend"
)
