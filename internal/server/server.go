// Package server wires the conversion service into an HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	htmlconv "github.com/porticus-lab/go-html-convert"
	"github.com/porticus-lab/go-html-convert/internal/config"
	"github.com/porticus-lab/go-html-convert/internal/convert"
	"github.com/porticus-lab/go-html-convert/internal/handler"
	"github.com/porticus-lab/go-html-convert/internal/metrics"
	"github.com/porticus-lab/go-html-convert/internal/middleware"
	"github.com/porticus-lab/go-html-convert/internal/store"
)

// Server serves the conversion API.
type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	renderers []htmlconv.Renderer
	store     *store.Store
	metrics   *metrics.Metrics
	handler   http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithRenderers replaces the default PDF and slide renderers.
func WithRenderers(r ...htmlconv.Renderer) Option {
	return func(s *Server) {
		s.renderers = r
	}
}

// New builds the server from cfg. The browser is not started here: each
// PDF conversion launches and releases its own.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.renderers == nil {
		s.renderers = []htmlconv.Renderer{
			htmlconv.NewPDFRenderer(nil, cfg.ConverterOptions()...),
			htmlconv.NewSlidesRenderer(),
		}
	}

	st, err := store.New(cfg.OutputDir, cfg.BaseURL, logger)
	if err != nil {
		return nil, err
	}
	s.store = st

	svc := convert.NewService(s.renderers, st, s.metrics, logger)
	s.handler = s.routes(handler.NewConvertHandler(svc, cfg.MaxBodyBytes, logger))
	return s, nil
}

func (s *Server) routes(convertHandler *handler.ConvertHandler) http.Handler {
	// Go 1.22+ enhanced patterns
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.Health)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("POST /convert-html", convertHandler.Convert)
	mux.Handle("GET "+store.DownloadPrefix, http.StripPrefix(store.DownloadPrefix, s.store.Handler()))

	// Order: CORS → Logging → Recovery → Routes
	var h http.Handler = mux
	h = middleware.Recovery(s.logger)(h)
	h = middleware.RequestLogger(s.logger)(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: s.cfg.Origins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
	})
	return corsHandler.Handler(h)
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Store returns the output store.
func (s *Server) Store() *store.Store {
	return s.store
}

// Run listens on the configured port until ctx is done, then shuts down
// gracefully, giving in-flight conversions up to the render timeout plus a
// few seconds to finish.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.cfg.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*s.cfg.RenderTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if path, err := htmlconv.LocateBrowser(s.cfg.ConverterOptions()...); err != nil {
		s.logger.Warn("no browser available, PDF conversions will fail", "error", err)
	} else {
		s.logger.Info("browser located", "path", path)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server listening",
			"addr", ln.Addr().String(),
			"output_dir", s.store.Dir(),
			"base_url", s.cfg.BaseURL,
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.RenderTimeout+5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
