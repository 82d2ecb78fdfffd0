package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coursematch/pkg/controller/presenter"
	"github.com/secmon-lab/coursematch/pkg/domain/model"
	"github.com/secmon-lab/coursematch/pkg/usecase"
)

// maxRequestBody bounds the recommendation request body
const maxRequestBody = 64 << 10

type recommendationRequest struct {
	Education       string   `json:"education" validate:"required,max=200"`
	Major           string   `json:"major" validate:"required,max=200"`
	TechnicalSkills []string `json:"technical_skills" validate:"max=200,dive,max=100"`
	SoftSkills      []string `json:"soft_skills" validate:"max=50,dive,max=100"`
	Interests       string   `json:"interests" validate:"max=2000"`
	CareerGoals     string   `json:"career_goals" validate:"max=2000"`
	TopK            *int     `json:"top_k" validate:"omitempty,min=0,max=500"`
}

func (req *recommendationRequest) profile() *model.Profile {
	return &model.Profile{
		Education:       req.Education,
		Major:           req.Major,
		TechnicalSkills: req.TechnicalSkills,
		SoftSkills:      req.SoftSkills,
		Interests:       req.Interests,
		CareerGoals:     req.CareerGoals,
	}
}

func recommendHandler(uc RecommendUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recommendationRequest
		decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			handleError(w, r, goerr.Wrap(usecase.ErrInvalidProfile, "invalid request body", goerr.V("cause", err.Error())))
			return
		}
		if err := validateRequest(&req); err != nil {
			handleError(w, r, err)
			return
		}

		result, err := uc.Recommend(r.Context(), req.profile(), req.TopK)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, presenter.NewRecommendation(result))
	}
}

func presetsHandler(uc ProfileUseCase) http.HandlerFunc {
	type presetResponse struct {
		ID      string        `json:"id"`
		Name    string        `json:"name"`
		Profile model.Profile `json:"profile"`
	}
	type response struct {
		Presets []presetResponse `json:"presets"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		presets := uc.Presets()
		resp := response{
			Presets: make([]presetResponse, len(presets)),
		}
		for i, p := range presets {
			resp.Presets[i] = presetResponse{
				ID:      p.ID,
				Name:    p.Name,
				Profile: p.Profile,
			}
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

func presetRecommendHandler(profileUC ProfileUseCase, recommendUC RecommendUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		preset, err := profileUC.Preset(chi.URLParam(r, "id"))
		if err != nil {
			handleError(w, r, err)
			return
		}

		var topK *int
		if raw := r.URL.Query().Get("top_k"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				handleError(w, r, goerr.Wrap(usecase.ErrInvalidProfile, "top_k must be a non-negative integer",
					goerr.V(usecase.TopKKey, raw)))
				return
			}
			topK = &n
		}

		profile := preset.Profile
		result, err := recommendUC.Recommend(r.Context(), &profile, topK)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, presenter.NewRecommendation(result))
	}
}

func optionsHandler(uc ProfileUseCase) http.HandlerFunc {
	type response struct {
		Education       []string `json:"education"`
		Majors          []string `json:"majors"`
		SoftSkills      []string `json:"soft_skills"`
		TechnicalSkills []string `json:"technical_skills"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := uc.Options(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, response{
			Education:       opts.Education,
			Majors:          opts.Majors,
			SoftSkills:      opts.SoftSkills,
			TechnicalSkills: opts.TechnicalSkills,
		})
	}
}
