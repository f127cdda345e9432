// Package server exposes the diagram pipeline over HTTP. It wraps a
// pipeline.Runner behind a chi router so the same caching and rendering
// logic backs both the CLI and the API.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/laneflow/laneflow/pkg/errors"
	"github.com/laneflow/laneflow/pkg/pipeline"
	"github.com/laneflow/laneflow/pkg/process"
)

// maxBodySize caps diagram request bodies. Triple files are small; anything
// past this is almost certainly a mistake.
const maxBodySize = 1 << 20

// Config holds the configuration for the HTTP server.
type Config struct {
	Addr   string // listen address (default: "127.0.0.1:8420")
	Runner *pipeline.Runner
	Logger *log.Logger
}

// Server is the laneflow HTTP server.
type Server struct {
	runner *pipeline.Runner
	router chi.Router
	addr   string
	logger *log.Logger
}

// NewServer creates a server with the given configuration and sets up routing.
func NewServer(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8420"
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	s := &Server{
		runner: cfg.Runner,
		addr:   cfg.Addr,
		logger: cfg.Logger,
	}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server and blocks until ctx is canceled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("listening", "addr", s.addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// buildRouter constructs the chi router with all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/diagrams", s.handleDiagram)
		r.Post("/graphs", s.handleGraph)
	})

	return r
}

// requestLogger logs one line per request with the structured logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// handleHealth returns a JSON health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDiagram renders a diagram from the triple text in the request body.
// The format query parameter selects the output (default drawio); procedures
// narrows the emitted pools; refresh=true bypasses the graph cache.
func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.optionsFromRequest(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.DefaultFormat
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}
	opts.Formats = []string{format}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("X-Graph-Hash", result.GraphHash)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// handleGraph parses the triple text and returns the reconstructed process
// graph as JSON, without computing a layout.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.optionsFromRequest(w, r)
	if !ok {
		return
	}

	g, err := s.runner.Parse(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = process.WriteGraph(g, w)
}

// optionsFromRequest reads the request body and common query parameters into
// pipeline options. On failure it writes the error response and returns false.
func (s *Server) optionsFromRequest(w http.ResponseWriter, r *http.Request) (pipeline.Options, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return pipeline.Options{}, false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "request body must contain triple text"))
		return pipeline.Options{}, false
	}

	q := r.URL.Query()
	opts := pipeline.Options{
		Input:   string(body),
		Refresh: q.Get("refresh") == "true",
		Logger:  s.logger,
	}
	if procs := q.Get("procedures"); procs != "" {
		for _, name := range strings.Split(procs, ",") {
			if name = strings.TrimSpace(name); name != "" {
				opts.Procedures = append(opts.Procedures, name)
			}
		}
	}
	return opts, true
}

// contentType maps an output format to its MIME type.
func contentType(format string) string {
	switch format {
	case pipeline.FormatDrawio:
		return "application/xml; charset=utf-8"
	case pipeline.FormatJSON:
		return "application/json"
	case pipeline.FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// errorResponse is the JSON body for failed requests.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps an error to an HTTP status via its code and writes the
// standard JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidProcedure:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeUnsupported:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, errorResponse{Error: errorDetail{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
