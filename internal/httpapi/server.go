// Package httpapi exposes screening, batch screening and stored cases over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/joelkehle/sanctionguard/internal/casefile"
	"github.com/joelkehle/sanctionguard/internal/platform/metrics"
	"github.com/joelkehle/sanctionguard/internal/screening"
	"github.com/joelkehle/sanctionguard/internal/tribunal"
)

const (
	maxUploadBytes = 32 << 20
	maxBodyBytes   = 1 << 20
)

type Screener interface {
	Screen(ctx context.Context, in screening.Input, progress tribunal.StageProgressFn) (screening.CaseRecord, error)
	Batch(ctx context.Context, rows []screening.Input, progress screening.BatchProgressFn) ([]screening.BatchRow, error)
	Stats() screening.Stats
}

type CaseReader interface {
	Get(ctx context.Context, id string) (screening.CaseRecord, error)
	List(ctx context.Context, limit int) ([]casefile.Summary, error)
}

type CaseRenderer interface {
	RenderCase(ctx context.Context, rec screening.CaseRecord) ([]byte, error)
}

type Deps struct {
	Session  Screener
	Cases    CaseReader
	Renderer CaseRenderer
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

type Server struct {
	session  Screener
	cases    CaseReader
	renderer CaseRenderer
	logger   *zap.Logger
}

func NewServer(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{session: d.Session, cases: d.Cases, renderer: d.Renderer, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", s.handleHealth)
	r.Post("/screen", s.handleScreen)
	r.Post("/batch", s.handleBatch)
	r.Route("/cases", func(r chi.Router) {
		r.Get("/", s.handleListCases)
		r.Get("/{id}", s.handleGetCase)
		r.Get("/{id}/report.pdf", s.handleCaseReport)
	})
	if d.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"ok": false,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.session.Stats()
	status := "ok"
	if stats.Degraded {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":           true,
		"status":       status,
		"entities":     stats.Entities,
		"degraded":     stats.Degraded,
		"last_updated": stats.LastUpdated,
		"threshold":    stats.Threshold,
	})
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	var in screening.Input
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body: "+err.Error())
		return
	}
	rec, err := s.session.Screen(r.Context(), in, nil)
	if errors.Is(err, screening.ErrEmptyName) {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err != nil {
		s.logger.Error("screen failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "expected multipart upload: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing file field")
		return
	}
	defer file.Close()

	rows, err := screening.ReadBatch(file, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_batch", err.Error())
		return
	}

	results, err := s.session.Batch(r.Context(), rows, func(done, total int, name string) {
		s.logger.Debug("batch progress", zap.Int("done", done), zap.Int("total", total), zap.String("name", name))
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "xlsx") {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="screening_results.xlsx"`)
		if err := screening.WriteXLSX(w, results); err != nil {
			s.logger.Error("write xlsx", zap.Error(err))
		}
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="screening_results.csv"`)
	if err := screening.WriteCSV(w, results); err != nil {
		s.logger.Error("write csv", zap.Error(err))
	}
}

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	if s.cases == nil {
		writeError(w, http.StatusServiceUnavailable, "cases_disabled", "case store not configured")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	list, err := s.cases.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "cases": list})
}

func (s *Server) loadCase(w http.ResponseWriter, r *http.Request) (screening.CaseRecord, bool) {
	if s.cases == nil {
		writeError(w, http.StatusServiceUnavailable, "cases_disabled", "case store not configured")
		return screening.CaseRecord{}, false
	}
	id := chi.URLParam(r, "id")
	rec, err := s.cases.Get(r.Context(), id)
	if errors.Is(err, casefile.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("case %s not found", id))
		return screening.CaseRecord{}, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return screening.CaseRecord{}, false
	}
	return rec, true
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	if rec, ok := s.loadCase(w, r); ok {
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) handleCaseReport(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadCase(w, r)
	if !ok {
		return
	}
	if s.renderer == nil {
		writeError(w, http.StatusServiceUnavailable, "pdf_disabled", "pdf renderer not configured")
		return
	}
	pdf, err := s.renderer.RenderCase(r.Context(), rec)
	if err != nil {
		s.logger.Error("render case report", zap.String("case_id", rec.ID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "pdf_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.ReportFilename()))
	_, _ = w.Write(pdf)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
