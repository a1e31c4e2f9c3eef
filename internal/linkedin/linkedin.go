// Package linkedin turns LinkedIn (Sales Navigator or connections) CSV
// exports into leads.
package linkedin

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/estimate"
	"github.com/sells-group/lead-scout/internal/model"
)

// Logical columns of an import.
const (
	ColFirstName   = "first_name"
	ColLastName    = "last_name"
	ColCompany     = "company"
	ColPosition    = "position"
	ColEmail       = "email"
	ColLinkedInURL = "linkedin_url"
	ColWebsite     = "website"
)

// ContactSource tags leads and emails created by an import.
const ContactSource = "linkedin_import"

// ColumnAliases lists the header spellings recognized for each column, in
// preference order.
var ColumnAliases = map[string][]string{
	ColFirstName:   {"first name", "nome", "firstname", "given name"},
	ColLastName:    {"last name", "cognome", "lastname", "family name"},
	ColCompany:     {"company", "azienda", "current company", "società", "societa"},
	ColPosition:    {"position", "ruolo", "title", "job title"},
	ColEmail:       {"email address", "email", "e-mail"},
	ColLinkedInURL: {"url", "profile url", "linkedin url", "public profile url"},
	ColWebsite:     {"website", "company website", "sito", "site"},
}

var columnOrder = []string{ColFirstName, ColLastName, ColCompany, ColPosition, ColEmail, ColLinkedInURL, ColWebsite}

var delimiters = []rune{',', ';', '\t', '|'}

var spaceRe = regexp.MustCompile(`\s+`)

func norm(s string) string {
	return spaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// Parse reads a CSV export and returns one lead per row that names a
// company or a person. mapping optionally pins a logical column to a header.
func Parse(r io.Reader, mapping map[string]string) ([]*model.LeadRecord, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "linkedin: read csv")
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	text := strings.ToValidUTF8(string(raw), "�")

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = SniffDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "linkedin: read header")
	}

	cols := make(map[string]int, len(columnOrder))
	for _, key := range columnOrder {
		idx := mappedColumn(mapping[key], header)
		if idx < 0 {
			idx = pickColumn(header, ColumnAliases[key])
		}
		cols[key] = idx
	}

	var leads []*model.LeadRecord
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return leads, eris.Wrap(err, "linkedin: read row")
		}
		if lead := rowToLead(record, cols); lead != nil {
			leads = append(leads, lead)
		}
	}
	return leads, nil
}

func rowToLead(record []string, cols map[string]int) *model.LeadRecord {
	field := func(key string) string {
		i := cols[key]
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	name := strings.TrimSpace(strings.Join(nonEmpty(field(ColFirstName), field(ColLastName)), " "))
	if name == "" {
		name = model.UnknownName
	}
	companyName := field(ColCompany)
	if companyName == "" && name == model.UnknownName {
		return nil
	}
	role := field(ColPosition)
	if cols[ColPosition] < 0 {
		role = model.UnknownName
	}
	email := field(ColEmail)
	profileURL := field(ColLinkedInURL)

	if companyName == "" {
		companyName = model.UnknownName
	}
	company := model.CompanyProfile{
		CompanyCandidate: model.CompanyCandidate{
			Name:          companyName,
			Website:       field(ColWebsite),
			GrowthSignals: []string{},
			Evidences: []model.Evidence{{
				Title:   "LinkedIn import",
				URL:     profileURL,
				Snippet: role,
				Source:  model.SourceLinkedIn,
			}},
		},
		ServicesProducts: []string{},
		TargetCustomers:  []string{},
		Technologies:     []string{},
		RecentProjects:   []string{},
		Partners:         []string{},
	}

	lead := model.NewLead(company, nil)
	lead.ContactSource = ContactSource
	if name != model.UnknownName {
		if role == "" {
			role = model.UnknownName
		}
		lead.DecisionMaker = &model.DecisionMaker{Name: name, Role: role, LinkedInURL: profileURL}
	}
	if email != "" {
		lead.VerifiedEmail = &model.VerifiedEmail{
			Email:   email,
			Status:  model.EmailUnknown,
			Source:  ContactSource,
			Details: map[string]any{"note": "email non verificata (import)"},
		}
	}
	est := estimate.Budget(&lead.Company, nil, nil)
	lead.EstimatedBudgetEUR = model.Float(est.AmountEUR)
	return lead
}

// SniffDelimiter picks the delimiter that splits the header line into the
// most fields. Comma wins ties and is the default.
func SniffDelimiter(text string) rune {
	header, _, _ := strings.Cut(text, "\n")
	best, bestN := ',', 0
	for _, d := range delimiters {
		if n := strings.Count(header, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

// mappedColumn resolves an explicit mapping: exact header first, then a
// case-insensitive match.
func mappedColumn(want string, header []string) int {
	if want == "" {
		return -1
	}
	for i, h := range header {
		if h == want {
			return i
		}
	}
	for i, h := range header {
		if norm(h) == norm(want) {
			return i
		}
	}
	return -1
}

// pickColumn matches aliases against normalized headers exactly, then as
// substrings.
func pickColumn(header []string, aliases []string) int {
	for _, a := range aliases {
		for i, h := range header {
			if norm(h) == norm(a) {
				return i
			}
		}
	}
	for i, h := range header {
		nh := norm(h)
		for _, a := range aliases {
			if strings.Contains(nh, norm(a)) {
				return i
			}
		}
	}
	return -1
}

func nonEmpty(xs ...string) []string {
	var out []string
	for _, x := range xs {
		if x != "" {
			out = append(out, x)
		}
	}
	return out
}
