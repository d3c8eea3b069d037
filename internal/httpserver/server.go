// Package httpserver exposes the webhook endpoint, a health route and
// the authenticated manual trigger.
package httpserver

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"chessbot/pkg/logx"
)

// Hooks are the callbacks the routes dispatch into. ProcessUpdate is nil
// until the bot finishes startup; the webhook route answers 500 "bot not
// initialized" in that window. Trigger runs fire-and-forget: the HTTP
// response does not await its completion.
type Hooks struct {
	Ready         func() bool
	ProcessUpdate func(body []byte) error
	Trigger       func(ctx context.Context, source string)
}

type Config struct {
	Port          int
	TriggerSecret string
}

type Server struct {
	cfg   Config
	log   logx.Logger
	hooks Hooks

	srv *http.Server
}

func New(cfg Config, hooks Hooks, log logx.Logger) *Server {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Server{cfg: cfg, log: log, hooks: hooks}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/", s.handleIndex)
	r.Post("/webhook", s.handleWebhook)
	r.Post("/trigger-puzzle/{secret}", s.handleTrigger)

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the route tree for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "chessbot is running via webhook")
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.hooks.ProcessUpdate == nil || (s.hooks.Ready != nil && !s.hooks.Ready()) {
		http.Error(w, "bot not initialized", http.StatusInternalServerError)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		http.Error(w, "read body", http.StatusInternalServerError)
		return
	}
	if err := s.hooks.ProcessUpdate(body); err != nil {
		s.log.Error("webhook processing failed", logx.Err(err))
		http.Error(w, "error processing update", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	secret := chi.URLParam(r, "secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.cfg.TriggerSecret)) != 1 {
		s.log.Warn("manual trigger rejected: bad secret", logx.String("remote", r.RemoteAddr))
		http.Error(w, "invalid secret", http.StatusForbidden)
		return
	}
	if s.hooks.Trigger == nil {
		http.Error(w, "bot not initialized", http.StatusInternalServerError)
		return
	}

	// Fire-and-forget: outcomes are logged, not reported to the caller.
	go s.hooks.Trigger(context.Background(), "manual")
	s.log.Info("manual trigger accepted", logx.String("remote", r.RemoteAddr))

	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "triggered")
}

func (s *Server) Start(ctx context.Context) error {
	_ = ctx
	go func() {
		s.log.Info("http server listening", logx.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server failed", logx.Err(err))
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
