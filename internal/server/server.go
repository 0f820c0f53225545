// Package server exposes manifest passes over HTTP for build farms and
// editor plugins that cannot link the Go packages directly.
//
//	GET  /healthz              liveness and build info
//	POST /v1/resolve           scene → first vertex-color stream
//	POST /v1/manifest/update   scene (+ manifest) → processed manifest
//	POST /v1/render            scene (+ manifest) → DOT or SVG
//	POST /v1/import/check      dropped paths → accept or reject
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/meshrules/pkg/pipeline"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 32 << 20

// Options configures a [Server].
type Options struct {
	// GameRoot is used for import checks that do not name one.
	GameRoot string
	// DropRoot is the directory import checks may look inside. Empty
	// disables the import check endpoint.
	DropRoot string
}

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
}

// New creates a server backed by runner.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger, opts: opts}
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.healthz)

	r.Route("/v1", func(r chi.Router) {
		r.Use(limitBody(maxBodyBytes))
		r.Post("/resolve", s.resolve)
		r.Post("/manifest/update", s.updateManifest)
		r.Post("/render", s.render)
		r.Post("/import/check", s.importCheck)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
