// Package server exposes the rendered page fragments and the live status
// over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/reinarrr/TLR-web-cfpages/internal/page"
	"github.com/reinarrr/TLR-web-cfpages/internal/schedule"
	"github.com/reinarrr/TLR-web-cfpages/internal/target"
)

const (
	defaultRateLimit = 120
	renderRateLimit  = 10
)

var yearPattern = regexp.MustCompile(`^[0-9]{4}$`)

type Server struct {
	Store  target.Store
	Loader *page.Loader
	Pages  []page.Page

	Rule     schedule.Rule
	Location *time.Location
	Now      func() time.Time

	// RateLimit is requests per minute per client IP.
	RateLimit int
	Logger    zerolog.Logger
}

type statusResponse struct {
	State     schedule.State `json:"state"`
	Start     time.Time      `json:"start"`
	Countdown string         `json:"countdown,omitempty"`
	Label     string         `json:"label"`
	LabelHTML string         `json:"label_html"`
	Subtitle  string         `json:"subtitle"`
}

type renderResponse struct {
	RunID     string                  `json:"run_id"`
	Page      string                  `json:"page"`
	Outcomes  map[string]page.Outcome `json:"outcomes"`
	Fragments map[string]string       `json:"fragments"`
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	limit := s.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(accessLog(s.Logger))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(limit, time.Minute))
		r.Get("/pages", s.handlePages)
		r.Get("/pages/{page}", s.handlePage)
		r.Get("/pages/{page}/{container}", s.handleFragment)
		r.Get("/live/status", s.handleStatus)
	})
	r.Group(func(r chi.Router) {
		r.Use(RateLimit(renderRateLimit, time.Minute))
		r.Get("/render/{page}", s.handleRender)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.Store.Pages(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if pages == nil {
		pages = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"pages": pages})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	frags, err := s.Store.Fragments(r.Context(), chi.URLParam(r, "page"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(frags) == 0 {
		writeError(w, http.StatusNotFound, "page not rendered")
		return
	}
	writeJSON(w, http.StatusOK, frags)
}

func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	frags, err := s.Store.Fragments(r.Context(), chi.URLParam(r, "page"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	html, ok := frags[chi.URLParam(r, "container")]
	if !ok {
		writeError(w, http.StatusNotFound, "container not rendered")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

// handleStatus evaluates the clock at request time. ?tz= selects the
// viewer's zone; the configured display zone is the default.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	loc := s.Location
	if tz := r.URL.Query().Get("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown time zone")
			return
		}
		loc = l
	}
	st := s.Rule.StatusAt(s.now(), loc)
	writeJSON(w, http.StatusOK, statusResponse{
		State:     st.State,
		Start:     st.Start.UTC(),
		Countdown: st.Countdown,
		Label:     st.Label,
		LabelHTML: schedule.LabelHTML(st),
		Subtitle:  st.Subtitle,
	})
}

// handleRender runs a fresh load of one page without publishing it.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if s.Loader == nil {
		writeError(w, http.StatusServiceUnavailable, "renderer not configured")
		return
	}
	p, ok := page.Find(s.Pages, chi.URLParam(r, "page"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown page")
		return
	}
	year := r.URL.Query().Get("year")
	if year != "" && !yearPattern.MatchString(year) {
		writeError(w, http.StatusBadRequest, "year must be four digits")
		return
	}

	surface := target.NewMemory(p.Containers...)
	res := s.Loader.Load(r.Context(), p, surface, page.Options{Year: year})
	writeJSON(w, http.StatusOK, renderResponse{
		RunID:     res.RunID,
		Page:      res.Page,
		Outcomes:  res.Outcomes,
		Fragments: surface.Snapshot(),
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, r.Context().Err()) {
		return
	}
	s.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("store read failed")
	writeError(w, http.StatusInternalServerError, "store unavailable")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"error": http.StatusText(status), "detail": detail})
}
