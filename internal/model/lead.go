package model

// LeadStatus is the sales status of a lead.
type LeadStatus string

const (
	LeadNew       LeadStatus = "nuovo"
	LeadContacted LeadStatus = "contattato"
	LeadFollowUp  LeadStatus = "follow-up"
)

// DefaultInvestmentWindow is the investment window in months used when a
// request does not set one.
var DefaultInvestmentWindow = []int{4, 6}

// LeadRecord is the unit of output of a run. Each pipeline stage fills in
// its own fields.
type LeadRecord struct {
	Company                CompanyProfile `json:"company"`
	DecisionMaker          *DecisionMaker `json:"decision_maker,omitempty"`
	VerifiedEmail          *VerifiedEmail `json:"verified_email,omitempty"`
	ContactSource          string         `json:"contact_source,omitempty"`
	EstimatedBudgetEUR     *float64       `json:"estimated_budget_eur,omitempty"`
	InvestmentWindowMonths []int          `json:"investment_window_months,omitempty"`
	Score                  int            `json:"score"`
	ScoreClass             string         `json:"score_class"`
	Status                 LeadStatus     `json:"status"`
}

// NewLead wraps an enriched company in a lead with status nuovo.
func NewLead(company CompanyProfile, window []int) *LeadRecord {
	if len(window) != 2 {
		window = DefaultInvestmentWindow
	}
	return &LeadRecord{
		Company:                company,
		InvestmentWindowMonths: []int{window[0], window[1]},
		ScoreClass:             "cold",
		Status:                 LeadNew,
	}
}

// ProjectProfile describes what the seller's reference company offers.
type ProjectProfile struct {
	ReferenceURL      string   `json:"reference_url"`
	ServicesOffered   []string `json:"services_offered"`
	IndustriesServed  []string `json:"industries_served"`
	Technologies      []string `json:"technologies"`
	ValueProps        []string `json:"value_props"`
	ProofPoints       []string `json:"proof_points"`
	TypicalDealMinEUR *float64 `json:"typical_deal_min_eur,omitempty"`
	TypicalDealMaxEUR *float64 `json:"typical_deal_max_eur,omitempty"`
	Notes             string   `json:"notes,omitempty"`
}

// EmailDraft is a generated first-contact email for one lead.
type EmailDraft struct {
	Company string `json:"company"`
	EmailTo string `json:"email_to,omitempty"`
	Draft   string `json:"draft"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
