package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"ridelog/internal/auth"
	"ridelog/internal/cache"
	applog "ridelog/internal/log"
	"ridelog/internal/middleware/ratelimit"
	"ridelog/internal/middleware/security"
	"ridelog/internal/middleware/trace"
	"ridelog/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options wires the server to its collaborators. Geocoder, Pinger and Caches
// may be nil.
type Options struct {
	Rides    *services.RideService
	Buddies  *services.BuddyService
	History  *services.HistoryService
	Geocoder services.Geocoder
	Verifier *auth.Verifier
	Limiter  *ratelimit.Limiter
	Logger   *applog.Logger
	Pinger   Pinger
	Caches   *cache.Manager
	Now      func() time.Time
}

type Server struct {
	http.Server

	rides    *services.RideService
	buddies  *services.BuddyService
	history  *services.HistoryService
	geocoder services.Geocoder
	pinger   Pinger
	caches   *cache.Manager
	now      func() time.Time

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())
	}

	detector := security.NewDetector()
	s := &Server{
		rides:    opts.Rides,
		buddies:  opts.Buddies,
		history:  opts.History,
		geocoder: opts.Geocoder,
		pinger:   opts.Pinger,
		caches:   opts.Caches,
		now:      now,
		limiter:  limiter,
		detector: detector,
		tracer:   trace.NewMiddleware(logger, detector.ExtractClientIP),
	}

	api := http.NewServeMux()
	api.HandleFunc("GET /api/rides", s.handleListRides)
	api.HandleFunc("POST /api/rides", s.handleCreateRide)
	api.HandleFunc("GET /api/dashboard", s.handleDashboard)
	api.HandleFunc("GET /api/buddies", s.handleListBuddies)
	api.HandleFunc("POST /api/buddies", s.handleCreateBuddy)
	api.HandleFunc("DELETE /api/buddies/{id}", s.handleDeleteBuddy)
	api.HandleFunc("GET /api/geocode", s.handleGeocode)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	if opts.Verifier != nil {
		mux.Handle("/api/", opts.Verifier.Middleware(api))
	} else {
		// without a verifier no request carries a user, so every API call is rejected
		slog.Warn("No token verifier configured, API requests will be refused")
		mux.Handle("/api/", api)
	}

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = limiter.Middleware(detector.ExtractClientIP)(handler)
	handler = detector.Middleware(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops background cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		if s.caches != nil {
			s.caches.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// requireUser returns the authenticated user or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		NewJSONResponse().Status(http.StatusUnauthorized).Error("unauthorized").Send(w)
	}
	return id, ok
}
