package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
)

var validate = validator.New()

// ErrInvalidRunRequest is wrapped by every RunRequest validation failure.
var ErrInvalidRunRequest = eris.New("model: invalid run request")

// Geography narrows discovery to a country, region and list of provinces.
type Geography struct {
	Country   string   `json:"country"`
	Region    string   `json:"region,omitempty"`
	Provinces []string `json:"provinces" validate:"dive,required"`
}

// Segment describes the target company size.
type Segment struct {
	Type         string   `json:"type" validate:"omitempty,oneof=PMI Enterprise Unknown"`
	EmployeesMin *int     `json:"employees_min,omitempty" validate:"omitempty,gte=0"`
	EmployeesMax *int     `json:"employees_max,omitempty" validate:"omitempty,gte=0"`
	RevenueMin   *float64 `json:"revenue_min_eur,omitempty" validate:"omitempty,gte=0"`
	RevenueMax   *float64 `json:"revenue_max_eur,omitempty" validate:"omitempty,gte=0"`
}

// Credentials are per-request API keys. A non-empty value overrides the
// configured key for that provider.
type Credentials struct {
	SearchProvider      string `json:"search_provider,omitempty" validate:"omitempty,oneof=auto serper perplexity jina newsapi"`
	SerperKey           string `json:"serper_api_key,omitempty"`
	PerplexityKey       string `json:"perplexity_api_key,omitempty"`
	JinaKey             string `json:"jina_api_key,omitempty"`
	NewsAPIKey          string `json:"newsapi_api_key,omitempty"`
	HunterKey           string `json:"hunter_api_key,omitempty"`
	EmailVerifyProvider string `json:"email_verify_provider,omitempty" validate:"omitempty,oneof=zerobounce neverbounce"`
	EmailVerifyKey      string `json:"email_verify_api_key,omitempty"`
	OpenCorporatesKey   string `json:"opencorporates_api_key,omitempty"`
	GoogleKey           string `json:"google_api_key,omitempty"`
	AnthropicKey        string `json:"anthropic_api_key,omitempty"`
}

// RunRequest is the input of a full pipeline run.
type RunRequest struct {
	Industry               string      `json:"industry" validate:"required"`
	Geography              Geography   `json:"geography"`
	Segment                Segment     `json:"segment"`
	InvestmentWindowMonths []int       `json:"investment_window_months" validate:"omitempty,len=2,dive,gte=0"`
	AllowedChannels        []string    `json:"allowed_channels" validate:"dive,oneof=email linkedin phone"`
	Limit                  int         `json:"limit" validate:"gte=1,lte=200"`
	ReferenceCompanyURL    string      `json:"reference_company_url,omitempty" validate:"omitempty,url"`
	Preset                 string      `json:"preset,omitempty" validate:"omitempty,max=64"`
	EnableProjectProfile   *bool       `json:"enable_project_profile,omitempty"`
	ForceRefreshProfile    bool        `json:"force_refresh_profile"`
	IncludeEmailDrafts     bool        `json:"include_email_drafts"`
	Credentials            Credentials `json:"api_keys"`
}

// ApplyDefaults fills unset fields with their defaults.
func (r *RunRequest) ApplyDefaults(defaultLimit int) {
	if r.Geography.Country == "" {
		r.Geography.Country = "Italia"
	}
	if r.Segment.Type == "" {
		r.Segment.Type = "Unknown"
	}
	if len(r.InvestmentWindowMonths) == 0 {
		r.InvestmentWindowMonths = append([]int(nil), DefaultInvestmentWindow...)
	}
	if len(r.AllowedChannels) == 0 {
		r.AllowedChannels = []string{"email", "linkedin"}
	}
	if r.Limit == 0 {
		r.Limit = defaultLimit
	}
	if r.EnableProjectProfile == nil {
		enabled := true
		r.EnableProjectProfile = &enabled
	}
	r.Industry = strings.TrimSpace(r.Industry)
}

// ProfileEnabled reports whether the reference profile should be built.
func (r *RunRequest) ProfileEnabled() bool {
	return r.EnableProjectProfile == nil || *r.EnableProjectProfile
}

// Validate checks the request against its struct tags.
func (r *RunRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return eris.Wrap(ErrInvalidRunRequest, strings.Join(msgs, "; "))
		}
		return eris.Wrap(err, "model: validate run request")
	}
	w := r.InvestmentWindowMonths
	if len(w) == 2 && w[0] > w[1] {
		return eris.Wrapf(ErrInvalidRunRequest, "investment window %v is inverted", w)
	}
	return nil
}

// RunResult is the output of a full pipeline run.
type RunResult struct {
	RunID          string          `json:"run_id"`
	Preset         string          `json:"preset,omitempty"`
	ProjectProfile *ProjectProfile `json:"project_profile,omitempty"`
	Leads          []*LeadRecord   `json:"leads"`
	EmailDrafts    []EmailDraft    `json:"email_drafts,omitempty"`
}
