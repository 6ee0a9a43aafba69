// Package server assembles the stores, handlers and router into the HTTP service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/EmpoweredVote/barangay-admin/internal/activity"
	"github.com/EmpoweredVote/barangay-admin/internal/auth"
	"github.com/EmpoweredVote/barangay-admin/internal/config"
	"github.com/EmpoweredVote/barangay-admin/internal/dashboard"
	"github.com/EmpoweredVote/barangay-admin/internal/middleware"
	"github.com/EmpoweredVote/barangay-admin/internal/requests"
	"github.com/EmpoweredVote/barangay-admin/internal/residents"
	"github.com/EmpoweredVote/barangay-admin/internal/respond"
	"github.com/EmpoweredVote/barangay-admin/internal/seeds"
	"github.com/EmpoweredVote/barangay-admin/internal/session"
	"github.com/EmpoweredVote/barangay-admin/internal/users"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const janitorInterval = 10 * time.Minute

type Server struct {
	cfg    *config.Config
	stores *Stores
	router *chi.Mux
}

// New opens the configured backend, applies the seed file if one is set and
// builds the router.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	st, err := OpenStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.SeedFile != "" {
		f, err := seeds.Load(cfg.SeedFile)
		if err != nil {
			st.Close()
			return nil, err
		}
		if _, err := seeds.Apply(ctx, f, st.Users, st.Residents); err != nil {
			st.Close()
			return nil, fmt.Errorf("seeding failed: %w", err)
		}
	}
	return NewWithStores(cfg, st), nil
}

// NewWithStores builds the router over existing stores.
func NewWithStores(cfg *config.Config, st *Stores) *Server {
	s := &Server{cfg: cfg, stores: st}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Stores() *Stores { return s.stores }

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	if s.cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CORSMiddleware(s.cfg.AllowedOrigins))

	r.Get("/", RootHandler)
	r.Get("/healthz", s.health)

	rec := activity.NewRecorder(s.stores.Activities)
	g := middleware.NewGate(r, s.stores.Sessions, Policy)

	auth.NewHandler(s.stores.Users, s.stores.Sessions, rec,
		middleware.NewRateLimiter(s.cfg.LoginRatePerMinute),
		auth.CookieOptions{TTL: s.cfg.SessionTTL, Secure: s.cfg.CookieSecure},
	).Routes(g)
	users.NewHandler(s.stores.Users, s.stores.Sessions, rec).Routes(g)
	residents.NewHandler(s.stores.Residents, rec).Routes(g)
	requests.NewHandler(s.stores.Requests, s.stores.Residents, rec).Routes(g)
	dashboard.NewHandler(dashboard.Sources{
		Users:      s.stores.Users,
		Residents:  s.stores.Residents,
		Requests:   s.stores.Requests,
		Activities: s.stores.Activities,
	}, rec).Routes(g)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if _, err := s.stores.Users.All(r.Context()); err != nil {
		respond.Error(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}
	respond.OK(w, map[string]string{
		"status":  "ok",
		"storage": s.cfg.StorageDriver,
	})
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go session.RunJanitor(janitorCtx, s.stores.Sessions, janitorInterval)

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("storage", s.cfg.StorageDriver).Msg("Server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) Close() error {
	return s.stores.Close()
}
