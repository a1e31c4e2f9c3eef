package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/provider"
	"github.com/sells-group/lead-scout/internal/scrape"
)

type mapFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (m *mapFetcher) Name() string { return "map" }

func (m *mapFetcher) Fetch(_ context.Context, url string) (*scrape.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, url)
	html, ok := m.pages[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return &scrape.Page{URL: url, HTML: html, StatusCode: 200}, nil
}

type fakeRegistry struct {
	rec *provider.RegistryRecord
	err error
	got string
}

func (f *fakeRegistry) Name() string { return "fake" }

func (f *fakeRegistry) SearchByName(_ context.Context, name string) (*provider.RegistryRecord, error) {
	f.got = name
	return f.rec, f.err
}

const homepage = `<html><head><title>Benvenuti da Rossi</title>
<meta name="description" content="Impianti elettrici industriali dal 1980">
<script src="/wp-content/app.js"></script></head>
<body><ul>
<li>Servizi di manutenzione impianti</li>
<li>Soluzioni per la logistica</li>
<li>Clienti nel settore retail</li>
<li>Contatti</li>
</ul></body></html>`

const aboutPage = `<html><body><p>Servizi di manutenzione impianti</p><p>Lavoriamo con PMI e enterprise</p>
<script src="https://js.hs-scripts.com/1.js"></script></body></html>`

func TestGuessName(t *testing.T) {
	assert.Equal(t, "Fabbrica Modena", GuessName("fabbrica-modena.it"))
	assert.Equal(t, "Acme", GuessName("acme.co.uk"))
}

func TestClassifyLines(t *testing.T) {
	text := "Servizi per la logistica\nChi siamo\nab\nClienti industria\n" + strings.Repeat("servizi ", 20)
	services, targets := ClassifyLines(text)
	assert.Equal(t, []string{"Servizi per la logistica"}, services)
	assert.Equal(t, []string{"Servizi per la logistica", "Clienti industria"}, targets)
}

func TestClassifyLinesCapsPerPage(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "Servizi clienti numero %d\n", i)
	}
	services, targets := ClassifyLines(b.String())
	assert.Len(t, services, 12)
	assert.Len(t, targets, 12)
}

func TestEnrich(t *testing.T) {
	f := &mapFetcher{pages: map[string]string{
		"https://rossi-impianti.it":           homepage,
		"https://rossi-impianti.it/chi-siamo": aboutPage,
		"https://rossi-impianti.it/contatti":  "<p>unused</p>",
	}}
	reg := &fakeRegistry{rec: &provider.RegistryRecord{Headquarters: "Via Roma 1, Modena"}}
	e := New(f, reg, 2)

	cand := &model.CompanyCandidate{
		Name:          "rossi-impianti.it",
		Website:       "https://rossi-impianti.it",
		Province:      "Modena",
		Industry:      "produzione",
		GrowthSignals: []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9"},
		Evidences:     []model.Evidence{{Title: "web hit", URL: "https://rossi-impianti.it", Source: model.SourceWeb}},
	}
	p := e.Enrich(context.Background(), cand)

	assert.Equal(t, "Rossi Impianti", p.Name)
	assert.Equal(t, "Rossi Impianti", reg.got)
	assert.Equal(t, "https://rossi-impianti.it", p.Website)
	assert.Equal(t, "Modena", p.Province)
	assert.Equal(t, "Impianti elettrici industriali dal 1980", p.Description)
	assert.Equal(t, "Via Roma 1, Modena", p.Headquarters)
	assert.Equal(t, []string{"Servizi di manutenzione impianti", "Soluzioni per la logistica"}, p.ServicesProducts)
	assert.Equal(t, []string{"Soluzioni per la logistica", "Clienti nel settore retail", "Lavoriamo con PMI e enterprise"}, p.TargetCustomers)
	assert.Equal(t, []string{"WordPress", "HubSpot"}, p.Technologies)
	assert.Len(t, p.RecentProjects, 8)
	assert.Len(t, p.GrowthSignals, 9)

	require.Len(t, p.Evidences, 3)
	assert.Equal(t, "web hit", p.Evidences[0].Title)
	assert.Equal(t, "Benvenuti da Rossi", p.Evidences[1].Title)
	assert.Equal(t, model.SourceSite, p.Evidences[1].Source)
	assert.Equal(t, "page:/chi-siamo", p.Evidences[2].Title)
	assert.Equal(t, "https://rossi-impianti.it/chi-siamo", p.Evidences[2].URL)
	assert.Contains(t, p.Evidences[2].Snippet, "Servizi di manutenzione")

	// Only the first four about paths are probed.
	assert.NotContains(t, f.calls, "https://rossi-impianti.it/contatti")
	// The candidate itself is not mutated.
	assert.Len(t, cand.Evidences, 1)
}

func TestEnrichDowngradesToHTTP(t *testing.T) {
	f := &mapFetcher{pages: map[string]string{
		"http://legacy.it":         `<title>Legacy</title>`,
		"http://legacy.it/azienda": `<p>Sistemi di automazione</p>`,
	}}
	p := New(f, nil, 1).Enrich(context.Background(), &model.CompanyCandidate{Website: "https://legacy.it"})

	assert.Equal(t, "http://legacy.it", p.Website)
	assert.Equal(t, []string{"Sistemi di automazione"}, p.ServicesProducts)
	assert.Equal(t, "page:/azienda", p.Evidences[len(p.Evidences)-1].Title)
}

func TestEnrichEmptySite(t *testing.T) {
	reg := &fakeRegistry{err: errors.New("registry down")}
	cand := &model.CompanyCandidate{
		Name:          "fabbrica-modena.it",
		Website:       "https://fabbrica-modena.it",
		Industry:      "produzione",
		GrowthSignals: []string{"Fabbrica Modena — assunzioni in corso"},
	}
	p := New(&mapFetcher{pages: map[string]string{}}, reg, 1).Enrich(context.Background(), cand)

	assert.Empty(t, p.Description)
	assert.Empty(t, p.Technologies)
	assert.Empty(t, p.ServicesProducts)
	assert.Empty(t, p.Headquarters)
	assert.Equal(t, []string{"Fabbrica Modena — assunzioni in corso"}, p.GrowthSignals)
	assert.Equal(t, []string{"Fabbrica Modena — assunzioni in corso"}, p.RecentProjects)
	assert.Equal(t, "Fabbrica Modena", p.Name)
}

func TestEnrichAllPreservesOrder(t *testing.T) {
	f := &mapFetcher{pages: map[string]string{}}
	var cands []*model.CompanyCandidate
	for i := 0; i < 12; i++ {
		cands = append(cands, &model.CompanyCandidate{Website: fmt.Sprintf("https://site%02d.it", i)})
	}
	out := New(f, nil, 4).EnrichAll(context.Background(), cands)

	require.Len(t, out, 12)
	for i, p := range out {
		assert.Equal(t, fmt.Sprintf("Site%02d", i), p.Name)
	}
}
