package model

// Evidence source tags.
const (
	SourceSite      = "site"
	SourceWeb       = "web"
	SourceNews      = "news"
	SourceHeuristic = "heuristic"
	SourceLinkedIn  = "linkedin_import"
)

// Evidence is a single observation supporting a lead.
type Evidence struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Snippet     string `json:"snippet,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	Source      string `json:"source"`
}

// CompanyCandidate is a company surfaced during discovery. Candidates are
// unique by apex domain within one discovery run.
type CompanyCandidate struct {
	Name          string     `json:"company_name"`
	Website       string     `json:"website"`
	Province      string     `json:"province,omitempty"`
	Industry      string     `json:"industry,omitempty"`
	GrowthSignals []string   `json:"growth_signals"`
	Evidences     []Evidence `json:"evidences"`
}

// AddEvidence appends evidence in discovery order.
func (c *CompanyCandidate) AddEvidence(ev Evidence) {
	c.Evidences = append(c.Evidences, ev)
}

// CompanyProfile is an enriched candidate.
type CompanyProfile struct {
	CompanyCandidate

	Description      string   `json:"description,omitempty"`
	ServicesProducts []string `json:"services_products"`
	TargetCustomers  []string `json:"target_customers"`
	Technologies     []string `json:"technologies"`
	EmployeesEst     *int     `json:"employees_est,omitempty"`
	RevenueEstEUR    *float64 `json:"revenue_est_eur,omitempty"`
	Headquarters     string   `json:"headquarters,omitempty"`
	RecentProjects   []string `json:"recent_projects"`
	Partners         []string `json:"partners"`
}

// DecisionMaker is the person identified as the likely buyer.
type DecisionMaker struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	SourceURL   string `json:"source_url,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
}

// UnknownName is used when a role is found without a recognizable name.
const UnknownName = "N/D"

// HasName reports whether the decision maker carries a real name.
func (d *DecisionMaker) HasName() bool {
	return d != nil && d.Name != "" && d.Name != UnknownName
}

// EmailStatus is the verification outcome of a contact email.
type EmailStatus string

const (
	EmailValid   EmailStatus = "valid"
	EmailInvalid EmailStatus = "invalid"
	EmailUnknown EmailStatus = "unknown"
)

// VerifiedEmail is a contact email with its verification outcome.
type VerifiedEmail struct {
	Email      string         `json:"email"`
	Status     EmailStatus    `json:"status"`
	Confidence *float64       `json:"confidence,omitempty"`
	Source     string         `json:"source"`
	Details    map[string]any `json:"details,omitempty"`
}
