package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"acme.it", "https://acme.it"},
		{"  acme.it  ", "https://acme.it"},
		{"http://acme.it", "http://acme.it"},
		{"https://acme.it/path", "https://acme.it/path"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestApexDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.acme.it/chi-siamo", "acme.it"},
		{"shop.acme.co.uk", "acme.co.uk"},
		{"http://news.fabbrica-modena.it:8080/a", "fabbrica-modena.it"},
		{"ACME.IT", "acme.it"},
		{"localhost", "localhost"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ApexDomain(tt.in))
		})
	}
}

func TestBaseAndJoin(t *testing.T) {
	assert.Equal(t, "https://acme.it", Base("acme.it/foo/bar"))
	assert.Equal(t, "http://acme.it:8080", Base("http://acme.it:8080/x"))
	assert.Equal(t, "https://acme.it/chi-siamo", Join("https://acme.it/", "/chi-siamo"))
	assert.Equal(t, "https://acme.it/team", Join("acme.it", "team"))
}

func TestResolve(t *testing.T) {
	base := "https://acme.it/servizi/"
	assert.Equal(t, "https://acme.it/servizi/cctv", Resolve(base, "cctv"))
	assert.Equal(t, "https://acme.it/about", Resolve(base, "/about#team"))
	assert.Equal(t, "https://other.it/x", Resolve(base, "https://other.it/x"))
	assert.Equal(t, "", Resolve(base, "mailto:info@acme.it"))
	assert.Equal(t, "", Resolve(base, "javascript:void(0)"))
}

func TestSameSite(t *testing.T) {
	assert.True(t, SameSite("https://acme.it/a", "https://ACME.it/b"))
	assert.True(t, SameSite("https://acme.it/a", "https://www.acme.it/b"))
	assert.True(t, SameSite("https://shop.acme.it/clienti", "https://acme.it"))
	assert.True(t, SameSite("acme.it", "https://www.acme.it/servizi"))
	assert.False(t, SameSite("https://acme.it/a", "https://acme.com/a"))
	assert.False(t, SameSite("https://acme.it/a", "https://altro.it/a"))
	assert.False(t, SameSite("not a url", "not a url"))
}
