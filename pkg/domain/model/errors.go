package model

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidProfile = goerr.New("invalid profile")
	ErrPresetNotFound = goerr.New("preset not found")
)

// Context keys for error values
const (
	EducationKey = "education"
	MajorKey     = "major"
	PresetIDKey  = "preset_id"
	CourseKey    = "course"
)
