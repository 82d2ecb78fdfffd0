package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/coursematch/pkg/controller/presenter"
	"github.com/secmon-lab/coursematch/pkg/domain/model"
	"github.com/secmon-lab/coursematch/pkg/usecase"
	"github.com/urfave/cli/v3"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

func cmdRecommend() *cli.Command {
	var profilePath string
	var presetID string
	var format string
	var rtCfg runtimeConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "profile",
			Aliases:     []string{"p"},
			Usage:       "Learner profile file (TOML, or JSON with a .json extension)",
			Destination: &profilePath,
		},
		&cli.StringFlag{
			Name:        "preset",
			Usage:       "Use a sample profile by ID instead of --profile",
			Destination: &presetID,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "Output format (table, json)",
			Value:       formatTable,
			Destination: &format,
		},
	}
	flags = append(flags, rtCfg.Flags()...)

	return &cli.Command{
		Name:    "recommend",
		Aliases: []string{"r"},
		Usage:   "Recommend courses for one learner profile",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if format != formatJSON && format != formatTable {
				return goerr.New("unsupported output format", goerr.V("format", format))
			}
			if (profilePath == "") == (presetID == "") {
				return goerr.New("exactly one of --profile or --preset is required")
			}

			uc, cleanup, err := rtCfg.setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			profile, err := resolveProfile(uc, profilePath, presetID)
			if err != nil {
				return err
			}

			// nil uses the engine default, which --top-k overrides
			result, err := uc.Recommend.Recommend(ctx, profile, nil)
			if err != nil {
				return goerr.Wrap(err, "failed to recommend courses")
			}

			view := presenter.NewRecommendation(result)
			if format == formatJSON {
				encoder := json.NewEncoder(c.Root().Writer)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(view); err != nil {
					return goerr.Wrap(err, "failed to write result")
				}
				return nil
			}
			return writeTable(c.Root().Writer, view)
		},
	}
}

func resolveProfile(uc *usecase.UseCases, path, presetID string) (*model.Profile, error) {
	if presetID != "" {
		preset, err := uc.Profile.Preset(presetID)
		if err != nil {
			return nil, err
		}
		profile := preset.Profile
		return &profile, nil
	}
	return loadProfile(path)
}

func loadProfile(path string) (*model.Profile, error) {
	// #nosec G304 - path is provided by CLI argument
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read profile", goerr.V("path", path))
	}

	var profile model.Profile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &profile)
	} else {
		err = toml.Unmarshal(data, &profile)
	}
	if err != nil {
		return nil, goerr.Wrap(model.ErrInvalidProfile, "failed to parse profile",
			goerr.V("path", path), goerr.V("cause", err.Error()))
	}
	return &profile, nil
}

func writeTable(w io.Writer, view *presenter.Recommendation) error {
	heading := color.New(color.FgCyan, color.Bold)
	warn := color.New(color.FgYellow)

	sections := []struct {
		title   string
		courses []presenter.Course
	}{
		{"Short-term courses (12 weeks or less)", view.ShortTerm},
		{"Long-term courses", view.LongTerm},
	}

	for _, sec := range sections {
		if _, err := heading.Fprintf(w, "%s (%d)\n", sec.title, len(sec.courses)); err != nil {
			return goerr.Wrap(err, "failed to write result")
		}
		if len(sec.courses) == 0 {
			fmt.Fprintln(w, "  none")
			fmt.Fprintln(w)
			continue
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  SCORE\tTITLE\tPROVIDER\tLEVEL\tWEEKS\tCOST/WEEK\tMISSING PREREQS")
		for _, course := range sec.courses {
			missing := "-"
			if len(course.MissingPrereqs) > 0 {
				missing = strings.Join(course.MissingPrereqs, ", ")
			}
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%d\t%v\t%s\n",
				course.Score, course.Title, course.Provider, course.Level,
				course.DurationWeeks, course.CostPerWeek, missing)
		}
		if err := tw.Flush(); err != nil {
			return goerr.Wrap(err, "failed to write result")
		}
		fmt.Fprintln(w)
	}

	if len(view.Excluded) > 0 {
		warn.Fprintf(w, "%d course(s) could not be scored:\n", len(view.Excluded))
		for _, ex := range view.Excluded {
			fmt.Fprintf(w, "  %s: %s\n", ex.Title, ex.Reason)
		}
	}
	return nil
}
