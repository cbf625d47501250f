// ABOUTME: Web UI server with embedded templates
// ABOUTME: Home feed, people, inbox, search, circles, profile, and onboarding pages
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/search"
	"github.com/harperreed/dofo/state"
	"github.com/harperreed/dofo/store"
	"github.com/harperreed/dofo/urgency"
	"github.com/harperreed/dofo/viz"
)

//go:embed templates/*
var templatesFS embed.FS

type Server struct {
	set       store.Set
	state     *state.Store
	templates *template.Template
	engine    *search.Engine
	generator *viz.GraphGenerator
	logger    *zap.Logger
	now       func() time.Time
	policy    urgency.Policy
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithPolicy sets the milestone window and default cadence.
func WithPolicy(p urgency.Policy) Option {
	return func(s *Server) { s.policy = p }
}

// NewServer parses the templates. st may be nil, which skips onboarding.
func NewServer(set store.Set, st *state.Store, logger *zap.Logger, opts ...Option) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"join": strings.Join,
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		set:       set,
		state:     st,
		templates: tmpl,
		engine:    search.NewEngine(set.People, set.Catalog, logger),
		generator: viz.NewGraphGenerator(set.People, set.Catalog),
		logger:    logger,
		now:       time.Now,
		policy:    urgency.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns every route behind the onboarding check.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /actions/{id}/complete", s.handleCompleteAction)

	mux.HandleFunc("GET /people", s.handlePeople)
	mux.HandleFunc("GET /people/{id}", s.handlePerson)
	mux.HandleFunc("POST /people/{id}/log", s.handleLogInteraction)
	mux.HandleFunc("POST /people/{id}/promises", s.handleAddPromise)
	mux.HandleFunc("POST /promises/{id}/complete", s.handleCompletePromise)

	mux.HandleFunc("GET /inbox", s.handleInbox)
	mux.HandleFunc("POST /inbox/{id}/dismiss", s.handleDismiss)
	mux.HandleFunc("POST /inbox/{id}/act", s.handleAct)
	mux.HandleFunc("POST /insights/refresh", s.handleRefresh)

	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("GET /circles", s.handleCircles)

	mux.HandleFunc("GET /profile", s.handleProfile)
	mux.HandleFunc("POST /profile", s.handleSaveProfile)
	mux.HandleFunc("GET /onboarding", s.handleOnboarding)
	mux.HandleFunc("POST /onboarding", s.handleCompleteOnboarding)

	return s.requireOnboarding(mux)
}

// requireOnboarding sends every page to /onboarding until the flag is set.
func (s *Server) requireOnboarding(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.state == nil || strings.HasPrefix(r.URL.Path, "/onboarding") {
			next.ServeHTTP(w, r)
			return
		}
		done, err := s.state.OnboardingComplete()
		if err != nil {
			s.serverError(w, err)
			return
		}
		if !done {
			http.Redirect(w, r, "/onboarding", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Serve handles requests on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Serve(ln)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down web server: %w", err)
		}
		if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Start listens on addr and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.logger.Info("starting web server", zap.String("url", "http://"+ln.Addr().String()))
	return s.Serve(ctx, ln)
}

func (s *Server) render(w http.ResponseWriter, status int, data map[string]interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.logger.Error("template error", zap.Any("template", data["ContentTemplate"]), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", zap.Error(err))
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// storeError maps ErrNotFound to 404 and everything else to 500.
func (s *Server) storeError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, models.ErrNotFound) {
		http.Error(w, what+" not found", http.StatusNotFound)
		return
	}
	s.serverError(w, err)
}

// isHTMX reports whether the request came from an hx-* attribute.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// respond writes fragment for HTMX requests and redirects everything else.
func respond(w http.ResponseWriter, r *http.Request, redirect, fragment string) {
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(fragment))
		return
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}
