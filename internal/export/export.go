// Package export writes leads to spreadsheet files with Italian column
// headers.
package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-scout/internal/model"
)

// Format is an export file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// SheetName is the worksheet that holds the leads in xlsx exports.
const SheetName = "Leads"

// ParseFormat maps s to a format, defaulting to xlsx.
func ParseFormat(s string) Format {
	if Format(strings.ToLower(strings.TrimSpace(s))) == FormatCSV {
		return FormatCSV
	}
	return FormatXLSX
}

// MIME returns the content type of f.
func (f Format) MIME() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Headers are the export columns, in order.
var Headers = []string{
	"Azienda",
	"Sito",
	"Settore",
	"Provincia",
	"Dimensione_dipendenti",
	"Fatturato_EUR",
	"Trigger_crescita",
	"Fonti_trigger",
	"Budget_stimato_EUR",
	"Timing_investimento",
	"Decision_maker",
	"Ruolo",
	"Email_verificata",
	"Stato_email",
	"Fonte_contatto",
	"Score",
	"Classe",
	"Stato",
}

const maxTriggerSources = 5

// Row returns the cell values of lead in Headers order. Missing values are
// nil; present values are string, int or float64.
func Row(lead *model.LeadRecord) []any {
	c := lead.Company
	row := []any{
		c.Name,
		c.Website,
		optString(c.Industry),
		optString(c.Province),
		nil,
		nil,
		strings.Join(c.RecentProjects, " | "),
		strings.Join(evidenceURLs(c.Evidences, maxTriggerSources), " | "),
		nil,
		joinInts(lead.InvestmentWindowMonths, "-"),
		nil,
		nil,
		nil,
		nil,
		lead.ContactSource,
		lead.Score,
		lead.ScoreClass,
		string(lead.Status),
	}
	if c.EmployeesEst != nil {
		row[4] = *c.EmployeesEst
	}
	if c.RevenueEstEUR != nil {
		row[5] = *c.RevenueEstEUR
	}
	if lead.EstimatedBudgetEUR != nil {
		row[8] = *lead.EstimatedBudgetEUR
	}
	if dm := lead.DecisionMaker; dm != nil {
		row[10] = dm.Name
		row[11] = dm.Role
	}
	if ve := lead.VerifiedEmail; ve != nil {
		row[12] = ve.Email
		row[13] = string(ve.Status)
	}
	return row
}

// FileName returns leads_YYYYMMDD_HHMMSS.<ext> for the UTC time t.
func FileName(f Format, t time.Time) string {
	return "leads_" + t.UTC().Format("20060102_150405") + "." + string(f)
}

// Bytes renders leads in format f.
func Bytes(leads []*model.LeadRecord, f Format) ([]byte, error) {
	if f == FormatCSV {
		return csvBytes(leads)
	}
	return xlsxBytes(leads)
}

// WriteFile renders leads into dir and returns the written path.
func WriteFile(dir string, leads []*model.LeadRecord, f Format, now time.Time) (string, error) {
	data, err := Bytes(leads, f)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "export: create dir %s", dir)
	}
	path := filepath.Join(dir, FileName(f, now))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrapf(err, "export: write %s", path)
	}
	return path, nil
}

func csvBytes(leads []*model.LeadRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\xef\xbb\xbf")
	w := csv.NewWriter(&buf)
	if err := w.Write(Headers); err != nil {
		return nil, eris.Wrap(err, "export: write csv header")
	}
	for _, lead := range leads {
		values := Row(lead)
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = formatCell(v)
		}
		if err := w.Write(record); err != nil {
			return nil, eris.Wrap(err, "export: write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, eris.Wrap(err, "export: flush csv")
	}
	return buf.Bytes(), nil
}

func xlsxBytes(leads []*model.LeadRecord) ([]byte, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return nil, eris.Wrap(err, "export: add sheet")
	}
	header := sheet.AddRow()
	for _, h := range Headers {
		header.AddCell().SetString(h)
	}
	for _, lead := range leads {
		row := sheet.AddRow()
		for _, v := range Row(lead) {
			cell := row.AddCell()
			switch x := v.(type) {
			case nil:
			case int:
				cell.SetInt(x)
			case float64:
				cell.SetFloat(x)
			case string:
				cell.SetString(x)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, eris.Wrap(err, "export: write xlsx")
	}
	return buf.Bytes(), nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	}
	return ""
}

func optString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func evidenceURLs(evs []model.Evidence, n int) []string {
	out := make([]string, 0, min(len(evs), n))
	for _, e := range evs[:min(len(evs), n)] {
		out = append(out, e.URL)
	}
	return out
}

func joinInts(xs []int, sep string) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, sep)
}
