package usecase

import (
	"context"

	"github.com/secmon-lab/coursematch/pkg/domain/model"
)

// ProfileUseCase serves what a profile form needs: option lists, the skill vocabulary and
// sample profiles.
type ProfileUseCase struct {
	catalog *CatalogUseCase
	options model.ProfileOptions
	presets *model.PresetRegistry
}

func NewProfileUseCase(catalog *CatalogUseCase, options model.ProfileOptions, presets *model.PresetRegistry) *ProfileUseCase {
	return &ProfileUseCase{
		catalog: catalog,
		options: options,
		presets: presets,
	}
}

// FormOptions lists the accepted enumerations and the technical skills seen in the catalog
type FormOptions struct {
	Education       []string
	Majors          []string
	SoftSkills      []string
	TechnicalSkills []string
}

func (uc *ProfileUseCase) Options(ctx context.Context) (*FormOptions, error) {
	idx, err := uc.catalog.Index()
	if err != nil {
		return nil, err
	}
	return &FormOptions{
		Education:       nonNil(uc.options.Education),
		Majors:          nonNil(uc.options.Majors),
		SoftSkills:      nonNil(uc.options.SoftSkills),
		TechnicalSkills: nonNil(idx.Skills()),
	}, nil
}

func (uc *ProfileUseCase) Presets() []*model.Preset {
	return uc.presets.Presets()
}

func (uc *ProfileUseCase) Preset(id string) (*model.Preset, error) {
	return uc.presets.Get(id)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
