package model

import (
	"slices"

	"github.com/m-mizutani/goerr/v2"
)

// Profile describes one learner for one request. It is never stored.
type Profile struct {
	Education       string   `json:"education" toml:"education"`
	Major           string   `json:"major" toml:"major"`
	TechnicalSkills []string `json:"technical_skills" toml:"technical_skills"`
	SoftSkills      []string `json:"soft_skills" toml:"soft_skills"`
	Interests       string   `json:"interests" toml:"interests"`
	CareerGoals     string   `json:"career_goals" toml:"career_goals"`
}

// NormalizedSkills returns the technical skills in comparison form
func (p *Profile) NormalizedSkills() []string {
	skills := make([]string, 0, len(p.TechnicalSkills))
	for _, s := range p.TechnicalSkills {
		if n := NormalizeSkill(s); n != "" {
			skills = append(skills, n)
		}
	}
	return skills
}

// ProfileOptions are the enumerations offered to learners. Empty lists accept any value.
type ProfileOptions struct {
	Education  []string
	Majors     []string
	SoftSkills []string
}

// Validate checks the enumerated fields of a profile against the options
func (o *ProfileOptions) Validate(p *Profile) error {
	if p.Education == "" {
		return goerr.Wrap(ErrInvalidProfile, "education is required")
	}
	if p.Major == "" {
		return goerr.Wrap(ErrInvalidProfile, "major is required")
	}
	if len(o.Education) > 0 && !slices.Contains(o.Education, p.Education) {
		return goerr.Wrap(ErrInvalidProfile, "unknown education level",
			goerr.V(EducationKey, p.Education))
	}
	if len(o.Majors) > 0 && !slices.Contains(o.Majors, p.Major) {
		return goerr.Wrap(ErrInvalidProfile, "unknown major",
			goerr.V(MajorKey, p.Major))
	}
	return nil
}

// Preset is a named sample profile
type Preset struct {
	ID      string
	Name    string
	Profile Profile
}

// PresetRegistry holds sample profiles in registration order
type PresetRegistry struct {
	entries map[string]*Preset
	order   []string
}

// NewPresetRegistry creates a new empty PresetRegistry
func NewPresetRegistry() *PresetRegistry {
	return &PresetRegistry{
		entries: make(map[string]*Preset),
	}
}

// Register adds a preset, replacing an existing one with the same ID
func (r *PresetRegistry) Register(preset *Preset) {
	if _, exists := r.entries[preset.ID]; !exists {
		r.order = append(r.order, preset.ID)
	}
	r.entries[preset.ID] = preset
}

// Get retrieves a preset by ID
func (r *PresetRegistry) Get(id string) (*Preset, error) {
	preset, ok := r.entries[id]
	if !ok {
		return nil, goerr.Wrap(ErrPresetNotFound, "preset not found", goerr.V(PresetIDKey, id))
	}
	return preset, nil
}

// Presets returns all presets in registration order
func (r *PresetRegistry) Presets() []*Preset {
	presets := make([]*Preset, 0, len(r.order))
	for _, id := range r.order {
		presets = append(presets, r.entries[id])
	}
	return presets
}
