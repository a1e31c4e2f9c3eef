// Package api exposes the lead pipeline over HTTP.
package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/config"
	"github.com/sells-group/lead-scout/internal/export"
	"github.com/sells-group/lead-scout/internal/linkedin"
	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/pipeline"
	"github.com/sells-group/lead-scout/internal/profile"
	"github.com/sells-group/lead-scout/internal/provider"
)

const maxUploadBytes = 32 << 20

// Server serves the pipeline stages as JSON endpoints.
type Server struct {
	pipeline *pipeline.Pipeline
	profiles *profile.Builder
	cfg      config.ServerConfig
	now      func() time.Time
}

// New creates a Server. profiles may be nil, which makes the cache
// endpoints report 503.
func New(p *pipeline.Pipeline, profiles *profile.Builder, cfg config.ServerConfig) *Server {
	return &Server{pipeline: p, profiles: profiles, cfg: cfg, now: time.Now}
}

// Routes returns the router with every endpoint mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)

	r.Group(func(r chi.Router) {
		r.Use(s.requireBearer)
		r.Post("/run", s.run)
		r.Post("/discover", s.discover)
		r.Post("/enrich", s.enrich)
		r.Post("/identify", s.identify)
		r.Post("/verify", s.verify)
		r.Post("/score", s.score)
		r.Post("/export", s.export)
		r.Post("/import/linkedin", s.importLinkedIn)
		r.Post("/profile/purge", s.purgeProfiles)
		r.Post("/profile/flush", s.flushProfiles)
	})
	return r
}

// requireBearer enforces the configured bearer token: 401 when the header is
// missing, 403 when the token does not match.
func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.BearerToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.cfg.BearerToken)) != 1 {
			writeError(w, http.StatusForbidden, "invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) run(w http.ResponseWriter, r *http.Request) {
	var req model.RunRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.pipeline.Run(r.Context(), &req)
	if err != nil {
		writeError(w, runStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) discover(w http.ResponseWriter, r *http.Request) {
	var req model.RunRequest
	if !decode(w, r, &req) {
		return
	}
	candidates, err := s.pipeline.Discover(r.Context(), &req)
	if err != nil {
		writeError(w, runStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"candidates": nonNil(candidates)})
}

type enrichRequest struct {
	Candidates  []*model.CompanyCandidate `json:"candidates"`
	Credentials model.Credentials         `json:"api_keys"`
}

func (s *Server) enrich(w http.ResponseWriter, r *http.Request) {
	var req enrichRequest
	if !decode(w, r, &req) {
		return
	}
	companies := s.pipeline.Enrich(r.Context(), req.Credentials, req.Candidates)
	writeJSON(w, http.StatusOK, map[string]any{"companies": nonNil(companies)})
}

type identifyRequest struct {
	Companies []*model.CompanyProfile `json:"companies"`
}

func (s *Server) identify(w http.ResponseWriter, r *http.Request) {
	var req identifyRequest
	if !decode(w, r, &req) {
		return
	}
	dms := s.pipeline.Identify(r.Context(), req.Companies)
	leads := make([]*model.LeadRecord, 0, len(req.Companies))
	for i, c := range req.Companies {
		if c == nil {
			continue
		}
		lead := model.NewLead(*c, nil)
		lead.DecisionMaker = dms[i]
		leads = append(leads, lead)
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

type leadsRequest struct {
	Leads          []*model.LeadRecord   `json:"leads"`
	Credentials    model.Credentials     `json:"api_keys"`
	Preset         string                `json:"preset,omitempty"`
	ProjectProfile *model.ProjectProfile `json:"project_profile,omitempty"`
	FileFormat     string                `json:"file_format,omitempty"`
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	var req leadsRequest
	if !decode(w, r, &req) {
		return
	}
	leads := compact(req.Leads)
	s.pipeline.Verify(r.Context(), req.Credentials, leads)
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

func (s *Server) score(w http.ResponseWriter, r *http.Request) {
	var req leadsRequest
	if !decode(w, r, &req) {
		return
	}
	leads := compact(req.Leads)
	s.pipeline.Score(leads, req.ProjectProfile, req.Preset)
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	var req leadsRequest
	if !decode(w, r, &req) {
		return
	}
	format := export.ParseFormat(req.FileFormat)
	data, err := export.Bytes(compact(req.Leads), format)
	if err != nil {
		zap.L().Error("api: export failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", format.MIME())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(format, s.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) importLinkedIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close() //nolint:errcheck

	var mapping map[string]string
	if raw := r.FormValue("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			zap.L().Debug("api: ignoring invalid column mapping", zap.Error(err))
			mapping = nil
		}
	}

	leads, err := linkedin.Parse(file, mapping)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imported_rows": len(leads), "leads": nonNil(leads)})
}

func (s *Server) purgeProfiles(w http.ResponseWriter, r *http.Request) {
	if s.profiles == nil {
		writeError(w, http.StatusServiceUnavailable, "profile cache not configured")
		return
	}
	n, err := s.profiles.Purge(r.Context())
	if err != nil {
		zap.L().Error("api: purge failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "purge failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"purged":   n,
		"ttl_days": int(s.profiles.TTL() / (24 * time.Hour)),
	})
}

func (s *Server) flushProfiles(w http.ResponseWriter, r *http.Request) {
	if s.profiles == nil {
		writeError(w, http.StatusServiceUnavailable, "profile cache not configured")
		return
	}
	n, err := s.profiles.Flush(r.Context())
	if err != nil {
		zap.L().Error("api: flush failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "flush failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// runStatus returns 400 for invalid requests and missing search credentials,
// 500 otherwise.
func runStatus(err error) int {
	if errors.Is(err, provider.ErrNoSearchProvider) || errors.Is(err, model.ErrInvalidRunRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func compact(leads []*model.LeadRecord) []*model.LeadRecord {
	out := make([]*model.LeadRecord, 0, len(leads))
	for _, l := range leads {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
