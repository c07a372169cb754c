// Package server exposes form filling over HTTP.
//
// Routes:
//
//	POST /fill     multipart: template (file), profile (text or file), photo (optional file)
//	POST /inspect  multipart: template (file); responds with the scan plan as JSON
//	GET  /healthz
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/tsawler/formfill"
)

// Config holds the HTTP settings.
type Config struct {
	Addr           string
	MaxUploadBytes int64
	CORSOrigins    []string
	OCRLanguage    string // Tesseract languages for image profiles
}

// Server serves form filling requests.
type Server struct {
	filler *formfill.Filler
	cfg    Config
	logger *zap.Logger
	router *chi.Mux
}

// New returns a Server using filler.
func New(filler *formfill.Filler, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}

	s := &Server{
		filler: filler,
		cfg:    cfg,
		logger: logger,
		router: chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)

	s.RegisterHTTP(s.router)
	return s
}

// RegisterHTTP registers the endpoints on r.
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Get("/healthz", s.handleHealth)
	r.Post("/fill", s.handleFill)
	r.Post("/inspect", s.handleInspect)
}

// Handler returns the router wrapped with CORS handling.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:     s.cfg.CORSOrigins,
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders:     []string{"Content-Disposition"},
		OptionsPassthrough: false,
	}).Handler(s.router)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server started", zap.String("addr", s.cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("stopping server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// logRequests logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
