package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyProfileJSONFlattensCandidate(t *testing.T) {
	p := CompanyProfile{
		CompanyCandidate: CompanyCandidate{
			Name:     "Acme",
			Website:  "https://acme.it",
			Industry: "logistica",
		},
		EmployeesEst: Int(120),
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "Acme", raw["company_name"])
	assert.Equal(t, "https://acme.it", raw["website"])
	assert.EqualValues(t, 120, raw["employees_est"])
	assert.NotContains(t, raw, "revenue_est_eur")
}

func TestAddEvidenceKeepsOrder(t *testing.T) {
	var c CompanyCandidate
	c.AddEvidence(Evidence{Title: "first"})
	c.AddEvidence(Evidence{Title: "second"})
	require.Len(t, c.Evidences, 2)
	assert.Equal(t, "first", c.Evidences[0].Title)
	assert.Equal(t, "second", c.Evidences[1].Title)
}

func TestDecisionMakerHasName(t *testing.T) {
	var nilDM *DecisionMaker
	assert.False(t, nilDM.HasName())
	assert.False(t, (&DecisionMaker{Name: UnknownName, Role: "CEO"}).HasName())
	assert.True(t, (&DecisionMaker{Name: "Mario Rossi", Role: "CEO"}).HasName())
}

func TestNewLead(t *testing.T) {
	lead := NewLead(CompanyProfile{}, nil)
	assert.Equal(t, LeadNew, lead.Status)
	assert.Equal(t, []int{4, 6}, lead.InvestmentWindowMonths)

	lead = NewLead(CompanyProfile{}, []int{2, 3})
	assert.Equal(t, []int{2, 3}, lead.InvestmentWindowMonths)
}
