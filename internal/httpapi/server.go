package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/healthcheckify/internal/domain"
	"github.com/hamed0406/healthcheckify/internal/health"
	apimw "github.com/hamed0406/healthcheckify/internal/httpapi/middleware"
)

// StatusService is the query side of the health registry.
type StatusService interface {
	Check(ctx context.Context, id domain.TargetID) (domain.Status, error)
	CheckAll(ctx context.Context) ([]health.TargetStatus, error)
}

type Server struct {
	Logger  *zap.Logger
	Status  StatusService
	Metrics http.Handler // nil disables /metrics
}

func NewServer(l *zap.Logger, s StatusService, metrics http.Handler) *Server {
	return &Server{Logger: l, Status: s, Metrics: metrics}
}

// Router wires the routes. publicRPM <= 0 disables rate limiting of the
// status routes.
func (s *Server) Router(publicRPM, publicBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(publicRPM, publicBurst))
		r.Get("/", s.handleLookupAll)
		r.Get("/api/status", s.handleStatusJSON)
		r.Get("/{id}", s.handleLookupOne)
	})

	return r
}

// handleLookupAll writes one "<id>: <status>" line per target.
func (s *Server) handleLookupAll(w http.ResponseWriter, r *http.Request) {
	all := s.checkAll(r)

	var b strings.Builder
	for _, ts := range all {
		fmt.Fprintf(&b, "%s: %s\n", ts.ID, ts.Status)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}

func (s *Server) handleStatusJSON(w http.ResponseWriter, r *http.Request) {
	all := s.checkAll(r)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(all)
}

func (s *Server) handleLookupOne(w http.ResponseWriter, r *http.Request) {
	id := domain.TargetID(strings.ReplaceAll(chi.URLParam(r, "id"), `"`, ""))

	st, err := s.Status.Check(r.Context(), id)
	switch {
	case errors.Is(err, health.ErrNotFound):
		writeText(w, http.StatusNotFound, "not found")
		return
	case err != nil:
		s.Logger.Warn("lookup_error", zap.String("target_id", string(id)), zap.Error(err))
		writeText(w, http.StatusServiceUnavailable, "unavailable")
		return
	}

	if st.Good() {
		writeText(w, http.StatusOK, "ok")
		return
	}
	writeText(w, http.StatusInternalServerError, "error")
}

// checkAll never fails the request: targets that could not be probed are
// reported with their cached status.
func (s *Server) checkAll(r *http.Request) []health.TargetStatus {
	all, err := s.Status.CheckAll(r.Context())
	if err != nil {
		s.Logger.Warn("check_all_error", zap.Error(err))
	}
	return all
}

func writeText(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(msg))
}
