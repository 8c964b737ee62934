package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/joseph-ayodele/timetable-import/internal/common"
	"github.com/joseph-ayodele/timetable-import/internal/core/async"
	"github.com/joseph-ayodele/timetable-import/internal/core/imagedata"
)

type HTTPConfig struct {
	RequestTimeout time.Duration
	// Health reports dependency readiness for /healthz; nil means always healthy.
	Health func(ctx context.Context) error
}

// NewRouter builds the JSON API.
func NewRouter(svc *Service, cfg HTTPConfig, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	h := &httpHandlers{svc: svc, cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", h.health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/extract", h.extract)
		r.Route("/timetables/{id}", func(r chi.Router) {
			r.Post("/imports", h.createImport)
			r.Get("/entries", h.listEntries)
			r.Get("/export.xlsx", h.exportAs("xlsx"))
			r.Get("/export.ics", h.exportAs("ics"))
		})
		r.Get("/jobs/{id}", h.getJob)
	})
	return r
}

type httpHandlers struct {
	svc    *Service
	cfg    HTTPConfig
	logger *slog.Logger
}

// requestLogger carries chi's request id into the context key the pipeline logs with.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rid := chimiddleware.GetReqID(r.Context())
			ctx := common.WithRequestID(r.Context(), rid)
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))
			logger.Info("http.request",
				"req_id", rid,
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

func (h *httpHandlers) health(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Health != nil {
		if err := h.cfg.Health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// extract accepts either a JSON body {"image": ..., "enhance": ...} or raw image bytes.
func (h *httpHandlers) extract(w http.ResponseWriter, r *http.Request) {
	if isRawImage(r) {
		body, err := readBody(r)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		img, err := imagedata.FromBytes(body)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		enhance, _ := strconv.ParseBool(r.URL.Query().Get("enhance"))
		writeJSON(w, http.StatusOK, h.svc.ExtractImage(r.Context(), img, enhance))
		return
	}
	var in ExtractInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.Extract(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// createImport runs synchronously, or queues the job when ?async=true.
func (h *httpHandlers) createImport(w http.ResponseWriter, r *http.Request) {
	var in ImportInput
	if isRawImage(r) {
		body, err := readBody(r)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		img, err := imagedata.FromBytes(body)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		q := r.URL.Query()
		in.Image = img.DataURL()
		in.Enhance, _ = strconv.ParseBool(q.Get("enhance"))
		in.Replace, _ = strconv.ParseBool(q.Get("replace"))
	} else if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	in.TimetableID = chi.URLParam(r, "id")

	if queued, _ := strconv.ParseBool(r.URL.Query().Get("async")); queued {
		out, err := h.svc.Submit(r.Context(), in)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		w.Header().Set("Location", "/v1/jobs/"+out.JobID.String())
		writeJSON(w, http.StatusAccepted, out)
		return
	}
	res, err := h.svc.Import(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *httpHandlers) listEntries(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListEntries(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *httpHandlers) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *httpHandlers) exportAs(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		out, err := h.svc.Export(r.Context(), ExportInput{
			TimetableID: chi.URLParam(r, "id"),
			Format:      format,
			WeekOf:      q.Get("weekOf"),
			Name:        q.Get("name"),
		})
		if err != nil {
			h.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", out.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(out.Content)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out.Content)
	}
}

func (h *httpHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := common.HTTPStatus(err)
	if errors.Is(err, async.ErrQueueClosed) {
		code = http.StatusServiceUnavailable
	}
	msg := err.Error()
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	if code >= http.StatusInternalServerError {
		h.logger.Error("http.request.failed", "req_id", common.RequestIDFromContext(r.Context()), "path", r.URL.Path, "error", err)
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

func isRawImage(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "application/octet-stream")
}

func readBody(r *http.Request) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r.Body, imagedata.MaxBytes+1))
	if err != nil {
		return nil, common.NewAppError("INVALID_ARGUMENT", "could not read request body", common.ErrInvalidInput)
	}
	return b, nil
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 2*imagedata.MaxBytes))
	if err := dec.Decode(dst); err != nil {
		return common.NewAppError("INVALID_ARGUMENT", "request body must be JSON", common.ErrInvalidInput)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
