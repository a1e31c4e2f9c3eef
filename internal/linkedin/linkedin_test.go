package linkedin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-scout/internal/model"
)

func TestParseConnectionsExport(t *testing.T) {
	csv := "\xef\xbb\xbfFirst Name,Last Name,URL,Email Address,Company,Position,Connected On\r\n" +
		"Mario,Rossi,https://www.linkedin.com/in/mrossi,mario.rossi@acme.it,Acme S.p.A.,CEO,01 Feb 2024\r\n" +
		",,,,,,\r\n" +
		",,https://www.linkedin.com/in/x,,Beta Srl,,\r\n"

	leads, err := Parse(strings.NewReader(csv), nil)
	require.NoError(t, err)
	require.Len(t, leads, 2)

	l := leads[0]
	assert.Equal(t, "Acme S.p.A.", l.Company.Name)
	assert.Equal(t, model.LeadNew, l.Status)
	assert.Equal(t, []int{4, 6}, l.InvestmentWindowMonths)
	assert.Equal(t, ContactSource, l.ContactSource)
	require.NotNil(t, l.DecisionMaker)
	assert.Equal(t, "Mario Rossi", l.DecisionMaker.Name)
	assert.Equal(t, "CEO", l.DecisionMaker.Role)
	assert.Equal(t, "https://www.linkedin.com/in/mrossi", l.DecisionMaker.LinkedInURL)
	require.NotNil(t, l.VerifiedEmail)
	assert.Equal(t, model.EmailUnknown, l.VerifiedEmail.Status)
	assert.Equal(t, ContactSource, l.VerifiedEmail.Source)
	require.Len(t, l.Company.Evidences, 1)
	assert.Equal(t, "LinkedIn import", l.Company.Evidences[0].Title)
	assert.Equal(t, "CEO", l.Company.Evidences[0].Snippet)
	require.NotNil(t, l.EstimatedBudgetEUR)
	assert.InDelta(t, 20_000, *l.EstimatedBudgetEUR, 0)

	beta := leads[1]
	assert.Equal(t, "Beta Srl", beta.Company.Name)
	assert.Nil(t, beta.DecisionMaker)
	assert.Nil(t, beta.VerifiedEmail)
}

func TestParseItalianSemicolon(t *testing.T) {
	csv := "Nome;Cognome;Azienda attuale;Ruolo;Sito web aziendale\n" +
		"Giulia;Bianchi;Logistica Emilia;Responsabile Acquisti;https://logem.it\n" +
		"Luca;;;;\n"

	leads, err := Parse(strings.NewReader(csv), nil)
	require.NoError(t, err)
	require.Len(t, leads, 2)

	assert.Equal(t, "Logistica Emilia", leads[0].Company.Name)
	assert.Equal(t, "https://logem.it", leads[0].Company.Website)
	assert.Equal(t, "Giulia Bianchi", leads[0].DecisionMaker.Name)
	assert.Equal(t, "Responsabile Acquisti", leads[0].DecisionMaker.Role)

	assert.Equal(t, model.UnknownName, leads[1].Company.Name)
	assert.Equal(t, "Luca", leads[1].DecisionMaker.Name)
	assert.Equal(t, model.UnknownName, leads[1].DecisionMaker.Role)
}

func TestParseExplicitMapping(t *testing.T) {
	csv := "Persona|Impresa|Mail\nAnna Neri|Gamma SpA|anna@gamma.it\n"

	leads, err := Parse(strings.NewReader(csv), map[string]string{
		ColFirstName: "persona",
		ColCompany:   "Impresa",
		ColEmail:     "MAIL",
	})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Gamma SpA", leads[0].Company.Name)
	assert.Equal(t, "Anna Neri", leads[0].DecisionMaker.Name)
	assert.Equal(t, "anna@gamma.it", leads[0].VerifiedEmail.Email)
	assert.Equal(t, model.UnknownName, leads[0].DecisionMaker.Role)
}

func TestParseEmpty(t *testing.T) {
	leads, err := Parse(strings.NewReader(""), nil)
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ';', SniffDelimiter("a;b;c\n1;2;3"))
	assert.Equal(t, '\t', SniffDelimiter("a\tb\n"))
	assert.Equal(t, '|', SniffDelimiter("a|b|c"))
	assert.Equal(t, ',', SniffDelimiter("single"))
	assert.Equal(t, ',', SniffDelimiter("a,b;c"))
}

func TestPickColumn(t *testing.T) {
	header := []string{"Public Profile URL", "Company Website", "URL"}
	assert.Equal(t, 2, pickColumn(header, ColumnAliases[ColLinkedInURL]))
	assert.Equal(t, 1, pickColumn(header, ColumnAliases[ColWebsite]))
	assert.Equal(t, -1, pickColumn(header, ColumnAliases[ColEmail]))
}
