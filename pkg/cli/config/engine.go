package config

import (
	_ "embed"
	"errors"
	"io/fs"
	"os"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/coursematch/pkg/domain/model"
	"github.com/secmon-lab/coursematch/pkg/service/matching"
	"github.com/urfave/cli/v3"
)

//go:embed engine.default.toml
var defaultEngineTOML []byte

// EngineFile is the TOML layout of the engine configuration file
type EngineFile struct {
	TopK    *int         `toml:"top_k"`
	Workers int          `toml:"workers"`
	Options OptionsFile  `toml:"options"`
	Presets []PresetFile `toml:"preset"`
}

type OptionsFile struct {
	Education  []string `toml:"education"`
	Majors     []string `toml:"majors"`
	SoftSkills []string `toml:"soft_skills"`
}

// PresetFile is a sample profile. The profile fields sit next to id and name.
type PresetFile struct {
	ID              string   `toml:"id"`
	Name            string   `toml:"name"`
	Education       string   `toml:"education"`
	Major           string   `toml:"major"`
	TechnicalSkills []string `toml:"technical_skills"`
	SoftSkills      []string `toml:"soft_skills"`
	Interests       string   `toml:"interests"`
	CareerGoals     string   `toml:"career_goals"`
}

var presetIDPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate checks the preset ID and the required profile fields
func (p *PresetFile) Validate() error {
	if !presetIDPattern.MatchString(p.ID) {
		return goerr.Wrap(ErrInvalidPresetID, "preset ID must be lower-case words joined by hyphens",
			goerr.V(PresetIDKey, p.ID))
	}
	if p.Name == "" {
		return goerr.Wrap(ErrMissingName, "preset name is required", goerr.V(PresetIDKey, p.ID))
	}
	if p.Education == "" || p.Major == "" {
		return goerr.Wrap(ErrInvalidConfig, "preset requires education and major", goerr.V(PresetIDKey, p.ID))
	}
	return nil
}

func (p *PresetFile) toModel() *model.Preset {
	return &model.Preset{
		ID:   p.ID,
		Name: p.Name,
		Profile: model.Profile{
			Education:       p.Education,
			Major:           p.Major,
			TechnicalSkills: p.TechnicalSkills,
			SoftSkills:      p.SoftSkills,
			Interests:       p.Interests,
			CareerGoals:     p.CareerGoals,
		},
	}
}

// Validate checks the whole file, including that presets satisfy the option lists
func (f *EngineFile) Validate() error {
	if f.TopK != nil && *f.TopK < 0 {
		return goerr.Wrap(ErrInvalidConfig, "top_k must not be negative", goerr.V("top_k", *f.TopK))
	}
	if f.Workers < 0 {
		return goerr.Wrap(ErrInvalidConfig, "workers must not be negative", goerr.V("workers", f.Workers))
	}

	opts := f.profileOptions()
	seen := make(map[string]struct{}, len(f.Presets))
	for i := range f.Presets {
		p := &f.Presets[i]
		if err := p.Validate(); err != nil {
			return goerr.Wrap(err, "invalid preset", goerr.V(PresetIndexKey, i))
		}
		if _, dup := seen[p.ID]; dup {
			return goerr.Wrap(ErrDuplicatePreset, "preset IDs must be unique", goerr.V(PresetIDKey, p.ID))
		}
		seen[p.ID] = struct{}{}

		profile := p.toModel().Profile
		if err := opts.Validate(&profile); err != nil {
			return goerr.Wrap(err, "preset does not match profile options", goerr.V(PresetIDKey, p.ID))
		}
	}
	return nil
}

func (f *EngineFile) profileOptions() model.ProfileOptions {
	return model.ProfileOptions{
		Education:  f.Options.Education,
		Majors:     f.Options.Majors,
		SoftSkills: f.Options.SoftSkills,
	}
}

// Engine is the matching engine configuration: result size, scoring parallelism, the
// profile option lists and the sample profiles.
type Engine struct {
	path    string
	topK    int
	workers int
}

func (e *Engine) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Engine configuration file (TOML). Built-in defaults are used when omitted",
			Category:    "Engine",
			Sources:     cli.EnvVars("COURSEMATCH_CONFIG"),
			Destination: &e.path,
		},
		&cli.IntFlag{
			Name:        "top-k",
			Usage:       "Default number of recommendations (overrides the config file when > 0)",
			Category:    "Engine",
			Sources:     cli.EnvVars("COURSEMATCH_TOP_K"),
			Destination: &e.topK,
		},
		&cli.IntFlag{
			Name:        "workers",
			Usage:       "Number of courses scored concurrently (0: number of CPUs)",
			Category:    "Engine",
			Sources:     cli.EnvVars("COURSEMATCH_WORKERS"),
			Destination: &e.workers,
		},
	}
}

// EngineSettings is the resolved engine configuration
type EngineSettings struct {
	TopK    int
	Workers int
	Options model.ProfileOptions
	Presets *model.PresetRegistry
}

// Configure loads the config file, or the built-in defaults, and applies flag overrides
func (e *Engine) Configure() (*EngineSettings, error) {
	file, err := e.load()
	if err != nil {
		return nil, err
	}
	if err := file.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid engine configuration", goerr.V(ConfigPathKey, e.path))
	}

	settings := &EngineSettings{
		TopK:    matching.DefaultTopK,
		Workers: file.Workers,
		Options: file.profileOptions(),
		Presets: model.NewPresetRegistry(),
	}
	if file.TopK != nil {
		settings.TopK = *file.TopK
	}
	if e.topK > 0 {
		settings.TopK = e.topK
	}
	if e.workers > 0 {
		settings.Workers = e.workers
	}
	for i := range file.Presets {
		settings.Presets.Register(file.Presets[i].toModel())
	}

	return settings, nil
}

func (e *Engine) load() (*EngineFile, error) {
	data := defaultEngineTOML
	if e.path != "" {
		// #nosec G304 - path is provided by CLI argument
		raw, err := os.ReadFile(e.path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, goerr.Wrap(ErrConfigNotFound, "engine config file not found", goerr.V(ConfigPathKey, e.path))
			}
			return nil, goerr.Wrap(err, "failed to read engine config", goerr.V(ConfigPathKey, e.path))
		}
		data = raw
	}

	var file EngineFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse engine config",
			goerr.V(ConfigPathKey, e.path), goerr.V("cause", err.Error()))
	}
	return &file, nil
}
