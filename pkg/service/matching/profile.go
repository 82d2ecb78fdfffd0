package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coursematch/pkg/domain/interfaces"
	"github.com/secmon-lab/coursematch/pkg/domain/model"
)

// ProfileText renders the profile into the sentence that gets encoded. The template is the
// same whatever fields are empty, so only the provided values move the embedding.
func ProfileText(p *model.Profile) string {
	return fmt.Sprintf(
		"Education: %s. Major: %s. Technical Skills: %s. Soft Skills: %s. Interests: %s. Career Goals: %s.",
		p.Education,
		p.Major,
		strings.Join(p.TechnicalSkills, ", "),
		strings.Join(p.SoftSkills, ", "),
		p.Interests,
		p.CareerGoals,
	)
}

// Vectorize encodes the profile sentence
func Vectorize(ctx context.Context, encoder interfaces.TextEncoder, p *model.Profile) ([]float64, error) {
	vectors, err := encoder.Encode(ctx, []string{ProfileText(p)})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode profile")
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return nil, goerr.New("encoder returned no profile embedding", goerr.V("count", len(vectors)))
	}
	return vectors[0], nil
}
