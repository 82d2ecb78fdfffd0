package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/coursematch/pkg/cli/config"
	"github.com/secmon-lab/coursematch/pkg/service/matching"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestEngine_Defaults(t *testing.T) {
	settings, err := config.NewEngineForTest("", 0, 0).Configure()
	gt.NoError(t, err).Required()

	gt.Value(t, settings.TopK).Equal(15)
	gt.Value(t, settings.Workers).Equal(0)
	gt.Array(t, settings.Options.Education).Equal([]string{"High School", "BSc", "B.Tech", "MSc", "MBA"})
	gt.Array(t, settings.Options.Majors).Equal([]string{"Computer Science", "IT", "Electronics", "Mathematics", "Business"})
	gt.Array(t, settings.Options.SoftSkills).Length(5)

	presets := settings.Presets.Presets()
	gt.Array(t, presets).Length(5).Required()
	gt.Value(t, presets[0].ID).Equal("beginner-high-school")
	gt.Array(t, presets[0].Profile.TechnicalSkills).Length(0)

	cloud, err := settings.Presets.Get("cloud-enthusiast")
	gt.NoError(t, err).Required()
	gt.Value(t, cloud.Profile.Education).Equal("B.Tech")
	gt.Array(t, cloud.Profile.TechnicalSkills).Equal([]string{"AWS", "Docker", "Kubernetes"})
}

func TestEngine_FlagOverrides(t *testing.T) {
	settings, err := config.NewEngineForTest("", 5, 3).Configure()
	gt.NoError(t, err).Required()
	gt.Value(t, settings.TopK).Equal(5)
	gt.Value(t, settings.Workers).Equal(3)
}

func TestEngine_File(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		check   func(t *testing.T, s *config.EngineSettings)
	}{
		{
			name: "custom options and presets",
			content: `
top_k = 0
workers = 2

[options]
education = ["BSc"]
majors = ["Physics"]

[[preset]]
id = "physicist"
name = "Physicist"
education = "BSc"
major = "Physics"
technical_skills = ["Python"]
`,
			check: func(t *testing.T, s *config.EngineSettings) {
				gt.Value(t, s.TopK).Equal(0)
				gt.Value(t, s.Workers).Equal(2)
				gt.Array(t, s.Options.Majors).Equal([]string{"Physics"})
				gt.Array(t, s.Presets.Presets()).Length(1)
			},
		},
		{
			name:    "empty file keeps default top_k and accepts any option",
			content: ``,
			check: func(t *testing.T, s *config.EngineSettings) {
				gt.Value(t, s.TopK).Equal(15)
				gt.Array(t, s.Options.Education).Length(0)
				gt.Array(t, s.Presets.Presets()).Length(0)
			},
		},
		{
			name:    "negative top_k",
			content: `top_k = -1`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "invalid preset ID",
			content: `
[[preset]]
id = "Not Valid"
name = "x"
education = "BSc"
major = "IT"
`,
			wantErr: config.ErrInvalidPresetID,
		},
		{
			name: "duplicate preset",
			content: `
[[preset]]
id = "a"
name = "A"
education = "BSc"
major = "IT"

[[preset]]
id = "a"
name = "A again"
education = "BSc"
major = "IT"
`,
			wantErr: config.ErrDuplicatePreset,
		},
		{
			name: "preset outside option lists",
			content: `
[options]
education = ["BSc"]

[[preset]]
id = "a"
name = "A"
education = "PhD"
major = "IT"
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "broken toml",
			content: `top_k = [`,
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, err := config.NewEngineForTest(writeConfig(t, tt.content), 0, 0).Configure()
			if tt.wantErr != nil {
				gt.Error(t, err).Is(tt.wantErr)
				return
			}
			gt.NoError(t, err).Required()
			tt.check(t, settings)
		})
	}
}

func TestEngine_MissingFile(t *testing.T) {
	_, err := config.NewEngineForTest(filepath.Join(t.TempDir(), "none.toml"), 0, 0).Configure()
	gt.Error(t, err).Is(config.ErrConfigNotFound)
}

func TestEngine_TopKFallsBackToEngineDefault(t *testing.T) {
	path := writeConfig(t, `
[[preset]]
id = "solo"
name = "Solo learner"
education = "BSc"
major = "IT"
`)
	settings, err := config.NewEngineForTest(path, 0, 0).Configure()
	gt.NoError(t, err).Required()
	gt.Value(t, settings.TopK).Equal(matching.DefaultTopK)
}
