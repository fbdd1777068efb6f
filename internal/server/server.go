package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"codeberg.org/snonux/vocabquiz/internal/audio"
	"codeberg.org/snonux/vocabquiz/internal/session"
)

const cookieName = "vocabquiz_session"

// Backend creates sessions and provides the services shared between them
type Backend interface {
	NewSession() *session.Session
	Audio() *audio.Cache
	ExportDeck(ctx context.Context, sess *session.Session, outputPath string) (int, error)
	DeckName() string
}

// Config tunes the server
type Config struct {
	SessionTTL    time.Duration // idle sessions are dropped after this
	SweepInterval time.Duration
	SecureCookie  bool
}

// DefaultConfig returns the server defaults
func DefaultConfig() Config {
	return Config{
		SessionTTL:    12 * time.Hour,
		SweepInterval: 10 * time.Minute,
	}
}

// Server serves the quiz API
type Server struct {
	backend  Backend
	registry *Registry
	cfg      Config
	log      *slog.Logger
}

// New creates a server for backend
func New(backend Backend, cfg Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		backend:  backend,
		registry: NewRegistry(backend.NewSession, cfg.SessionTTL),
		cfg:      cfg,
		log:      log,
	}
}

// Handler returns the HTTP router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/state", s.handleState)
		r.Post("/credential", s.handleCredential)
		r.Post("/words", s.handleWords)
		r.Post("/advance", s.handleAdvance)
		r.Post("/answer", s.handleAnswer)
		r.Post("/next", s.handleNext)
		r.Post("/image/rerender", s.handleRerender)
		r.Get("/image", s.handleImage)
		r.Get("/audio", s.handleAudio)
		r.Post("/export", s.handleExport)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			s.log.Error("failed to write health check response", "error", err)
		}
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("quiz server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.log.Info("shutting down quiz server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) sweep(ctx context.Context) {
	if s.cfg.SweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.registry.Sweep(); n > 0 {
				s.log.Info("idle sessions removed", "count", n, "live", s.registry.Len())
			}
		}
	}
}

type sessionKey struct{}

// withSession attaches the caller's session to the request, creating one
// and setting the cookie when the caller has none
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess *session.Session
		if c, err := r.Cookie(cookieName); err == nil {
			if id, err := uuid.Parse(c.Value); err == nil {
				sess, _ = s.registry.Get(id)
			}
		}

		if sess == nil {
			var id uuid.UUID
			id, sess = s.registry.Create()
			http.SetCookie(w, &http.Cookie{
				Name:     cookieName,
				Value:    id.String(),
				Path:     "/",
				HttpOnly: true,
				Secure:   s.cfg.SecureCookie,
				SameSite: http.SameSiteLaxMode,
			})
			s.log.Debug("session created", "session", id, "live", s.registry.Len())
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(sessionKey{}).(*session.Session)
	return sess
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
