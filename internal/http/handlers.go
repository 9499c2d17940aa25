package http

import (
	"context"
	"net/http"
	"time"

	"ridelog/internal/cache"
	"ridelog/internal/core"
	applog "ridelog/internal/log"
	"ridelog/internal/middleware/ratelimit"
	"ridelog/internal/middleware/security"
	"ridelog/internal/middleware/trace"
)

const (
	readyTimeout   = 3 * time.Second
	geocodeTimeout = 7 * time.Second
)

func (s *Server) handleListRides(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	history, err := s.history.RideHistory(r.Context(), uid, queryParam(r, "q"))
	if err != nil {
		ErrorFor(r, applog.OpList, err).Send(w)
		return
	}
	NewJSONResponse().Data(history).Send(w)
}

func (s *Server) handleCreateRide(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	in, err := ParseRideInput(w, r)
	if err != nil {
		BadRequestError(err.Error()).Send(w)
		return
	}

	ride, err := s.rides.CreateRide(r.Context(), uid, in)
	if err != nil {
		ErrorFor(r, applog.OpCreate, err).Send(w)
		return
	}
	s.history.Invalidate(uid)
	applog.LogRideCreated(r.Context(), uid, ride.ID, ride.Date, ride.DistanceMiles)

	NewJSONResponse().Status(http.StatusCreated).Data(ride).Send(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	dash, err := s.history.Dashboard(r.Context(), uid, s.now())
	if err != nil {
		ErrorFor(r, applog.OpDashboard, err).Send(w)
		return
	}
	NewJSONResponse().Data(dash).Send(w)
}

func (s *Server) handleListBuddies(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	buddies, err := s.buddies.ListBuddies(r.Context(), uid)
	if err != nil {
		ErrorFor(r, applog.OpList, err).Send(w)
		return
	}
	if buddies == nil {
		buddies = []core.Buddy{}
	}
	NewJSONResponse().Data(buddies).Send(w)
}

func (s *Server) handleCreateBuddy(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	in, err := ParseBuddyInput(w, r)
	if err != nil {
		BadRequestError(err.Error()).Send(w)
		return
	}
	buddy, err := s.buddies.AddBuddy(r.Context(), uid, in)
	if err != nil {
		ErrorFor(r, applog.OpCreate, err).Send(w)
		return
	}
	// dashboards resolve buddy names from the live list
	s.history.Invalidate(uid)
	NewJSONResponse().Status(http.StatusCreated).Data(buddy).Send(w)
}

func (s *Server) handleDeleteBuddy(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	id := pathID(r)
	if id == "" {
		BadRequestError("missing buddy id").Send(w)
		return
	}
	if err := s.buddies.DeleteBuddy(r.Context(), uid, id); err != nil {
		ErrorFor(r, applog.OpDelete, err).Send(w)
		return
	}
	s.history.Invalidate(uid)
	NewJSONResponse().Status(http.StatusNoContent).Send(w)
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	q := queryParam(r, "q")
	if q == "" {
		BadRequestError("missing query parameter q").Send(w)
		return
	}
	if s.geocoder == nil {
		NewJSONResponse().Status(http.StatusServiceUnavailable).Error("geocoding unavailable").Send(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), geocodeTimeout)
	defer cancel()
	places, err := s.geocoder.Geocode(ctx, q)
	if err != nil {
		applog.LogError(r.Context(), "Geocode failed", err, applog.OpGeocode, applog.ErrorTypeNetwork)
		NewJSONResponse().Status(http.StatusBadGateway).Error("geocoding failed").Send(w)
		return
	}
	if places == nil {
		places = []core.Place{}
	}
	NewJSONResponse().Data(places).Send(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			applog.LogError(r.Context(), "Readiness check failed", err, applog.OpHealthCheck, applog.ErrorTypeDatabase)
			NewJSONResponse().Status(http.StatusServiceUnavailable).Error("storage unavailable").Send(w)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

type metricsResponse struct {
	HTTP      trace.Metrics             `json:"http"`
	RateLimit ratelimit.Metrics         `json:"rate_limit"`
	Security  security.DetectionMetrics `json:"security"`
	Caches    map[string]cache.Stats    `json:"caches,omitempty"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	resp := metricsResponse{
		HTTP:      s.tracer.GetMetrics(),
		RateLimit: s.limiter.GetMetrics(),
		Security:  s.detector.GetMetrics(),
	}
	if s.caches != nil {
		resp.Caches = s.caches.Stats()
	}
	NewJSONResponse().Data(resp).Send(w)
}
