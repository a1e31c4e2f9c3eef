package provider

import (
	"context"

	"github.com/sells-group/lead-scout/pkg/google"
	"github.com/sells-group/lead-scout/pkg/opencorporates"
)

// OpenCorporatesRegistry looks companies up in OpenCorporates.
type OpenCorporatesRegistry struct {
	client opencorporates.Client
}

// NewOpenCorporatesRegistry wraps an OpenCorporates client.
func NewOpenCorporatesRegistry(c opencorporates.Client) *OpenCorporatesRegistry {
	return &OpenCorporatesRegistry{client: c}
}

func (r *OpenCorporatesRegistry) Name() string { return "opencorporates" }

// SearchByName returns the top match.
func (r *OpenCorporatesRegistry) SearchByName(ctx context.Context, name string) (*RegistryRecord, error) {
	companies, err := r.client.SearchCompanies(ctx, name, 5)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, nil
	}
	c := companies[0]
	return &RegistryRecord{
		Name:         c.Name,
		Headquarters: c.Headquarters(),
		URL:          c.OpenCorporatesURL,
		Source:       r.Name(),
	}, nil
}

// PlacesRegistry falls back to Google Places text search, using the
// formatted address of the top place as headquarters.
type PlacesRegistry struct {
	client google.Client
}

// NewPlacesRegistry wraps a Google Places client.
func NewPlacesRegistry(c google.Client) *PlacesRegistry {
	return &PlacesRegistry{client: c}
}

func (r *PlacesRegistry) Name() string { return "google_places" }

// SearchByName returns the top place.
func (r *PlacesRegistry) SearchByName(ctx context.Context, name string) (*RegistryRecord, error) {
	resp, err := r.client.TextSearch(ctx, name)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Places) == 0 {
		return nil, nil
	}
	p := resp.Places[0]
	return &RegistryRecord{
		Name:         p.DisplayName.Text,
		Headquarters: p.FormattedAddress,
		Website:      p.WebsiteURI,
		Source:       r.Name(),
	}, nil
}
