// Package server exposes the property pipeline over HTTP. The handlers stay
// thin: parameter parsing and status mapping here, all semantics in the core
// packages.
package server

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ppiankov/leadradar/internal/model"
	"github.com/ppiankov/leadradar/internal/service"
	"github.com/ppiankov/leadradar/internal/usage"
)

// Server serves the property API
type Server struct {
	svc   *service.Service
	usage usage.Recorder
	log   *slog.Logger
	addr  string
}

// New builds the API server. recorder may be nil; usage is then logged only.
func New(svc *service.Service, recorder usage.Recorder, cfg model.ServerConfig, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if recorder == nil {
		recorder = usage.NewLogRecorder(log)
	}
	return &Server{
		svc:   svc,
		usage: recorder,
		log:   log,
		addr:  cfg.Addr,
	}
}

// Handler returns the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/properties", s.handleList)
	mux.HandleFunc("GET /api/properties/packs", s.handlePacks)
	mux.HandleFunc("GET /api/properties/export", s.handleExport)
	mux.HandleFunc("POST /api/properties/refresh", s.handleRefresh)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("API server listening", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	response, err := s.svc.List(r.Context(), filters)
	if err != nil {
		s.writeError(w, err)
		return
	}

	accountID, userID := usageContext(r)
	s.usage.LogEvent(r.Context(), usage.Event{
		Type:      usage.EventList,
		Payload:   map[string]any{"limit": response.Limit, "offset": response.Offset, "returned": len(response.Items)},
		Metadata:  map[string]any{"total_available": response.Total},
		AccountID: accountID,
		UserID:    userID,
	})
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handlePacks(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	groupBy := r.URL.Query().Get("group_by")
	if groupBy == "" {
		groupBy = "postal_code"
	}
	packSize, err := intParam(r, "pack_size", 200)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if packSize < 1 || packSize > 500 {
		s.writeError(w, errInvalid("pack_size must be between 1 and 500"))
		return
	}

	accountID, userID := usageContext(r)
	if err := s.usage.EnsureWithinPlan(r.Context(), usage.EventLeadPack, accountID); err != nil {
		s.writeError(w, err)
		return
	}

	response, err := s.svc.LeadPacks(r.Context(), filters, groupBy, packSize)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.usage.LogEvent(r.Context(), usage.Event{
		Type:      usage.EventLeadPack,
		Payload:   map[string]any{"group_by": groupBy, "pack_size": packSize, "packs": len(response.Packs)},
		AccountID: accountID,
		UserID:    userID,
	})
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	accountID, userID := usageContext(r)
	if err := s.usage.EnsureWithinPlan(r.Context(), usage.EventExport, accountID); err != nil {
		s.writeError(w, err)
		return
	}

	rows, err := s.svc.ExportRows(r.Context(), filters)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="properties.csv"`)
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(rows); err != nil {
		s.log.Error("write csv export", "error", err)
		return
	}

	s.usage.LogEvent(r.Context(), usage.Event{
		Type:      usage.EventExport,
		Payload:   map[string]any{"rows": len(rows) - 1},
		AccountID: accountID,
		UserID:    userID,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	accountID, userID := usageContext(r)
	if err := s.usage.EnsureWithinPlan(r.Context(), usage.EventRefresh, accountID); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.svc.Refresh(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}

	s.usage.LogEvent(r.Context(), usage.Event{
		Type:      usage.EventRefresh,
		AccountID: accountID,
		UserID:    userID,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// writeError maps the core error taxonomy onto status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidFilters):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
	case errors.Is(err, usage.ErrQuotaExceeded):
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"detail": err.Error()})
	default:
		s.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "internal error"})
	}
}

func usageContext(r *http.Request) (accountID, userID string) {
	return r.Header.Get("X-Account-Id"), r.Header.Get("X-User-Id")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
