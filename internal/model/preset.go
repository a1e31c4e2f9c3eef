package model

// DefaultSenderCompany signs outreach drafts when no preset names a sender.
const DefaultSenderCompany = "Teleimpianti S.p.A."

// BoostRule adds Boost to the budget score when Pattern matches the company
// text.
type BoostRule struct {
	Pattern string  `yaml:"pattern" json:"pattern"`
	Boost   float64 `yaml:"boost" json:"boost"`
}

// Preset is a named industry pack layered over the base configuration.
type Preset struct {
	ID                  string      `yaml:"id" json:"id"`
	Name                string      `yaml:"name" json:"name"`
	SenderCompany       string      `yaml:"sender_company" json:"sender_company"`
	OfferKeywords       []string    `yaml:"offer_keywords" json:"offer_keywords"`
	PortfolioKeywords   []string    `yaml:"portfolio_keywords" json:"portfolio_keywords"`
	BudgetKeywordBoosts []BoostRule `yaml:"budget_keyword_boosts" json:"budget_keyword_boosts"`
	EmailProofPoints    []string    `yaml:"email_proof_points" json:"email_proof_points"`
}

// Sender returns the preset's sender company, or the default when p is nil
// or names none.
func (p *Preset) Sender() string {
	if p == nil || p.SenderCompany == "" {
		return DefaultSenderCompany
	}
	return p.SenderCompany
}
