package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ridelog/internal/auth"
	"ridelog/internal/cache"
	"ridelog/internal/core"
	"ridelog/internal/gateway/memory"
	applog "ridelog/internal/log"
	"ridelog/internal/middleware/ratelimit"
	"ridelog/internal/services"
)

const testSecret = "test-secret"

type fakeGeocoder struct {
	places []core.Place
	err    error
	calls  int
}

func (f *fakeGeocoder) Geocode(ctx context.Context, query string) ([]core.Place, error) {
	f.calls++
	return f.places, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

type testEnv struct {
	srv      *Server
	store    *memory.Store
	geocoder *fakeGeocoder
	rides    *cache.LRUCache[[]core.Ride]
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	geo := &fakeGeocoder{places: []core.Place{{Name: "Otley, England, United Kingdom", Latitude: 53.9, Longitude: -1.69}}}
	rides := cache.NewLRUCache[[]core.Ride](10, time.Minute)
	caches := cache.NewManager()
	caches.Register("rides", rides)

	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: 6000, Burst: 1000})
	srv := NewServer(":0", Options{
		Rides:    services.NewRideService(store, geo, nil, nil),
		Buddies:  services.NewBuddyService(store),
		History:  services.NewHistoryService(store, rides),
		Geocoder: geo,
		Verifier: auth.NewVerifier(testSecret, "", 0),
		Limiter:  limiter,
		Logger:   applog.New(applog.DefaultConfig()),
		Pinger:   fakePinger{},
		Caches:   caches,
		Now:      func() time.Time { return time.Date(2025, 2, 15, 12, 0, 0, 0, time.UTC) },
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testEnv{srv: srv, store: store, geocoder: geo, rides: rides}
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.Sign(testSecret, "", userID, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func (e *testEnv) do(t *testing.T, method, target, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, userID))
	}
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := env.do(t, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s missing request id", path)
		}
		if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Fatalf("%s missing security headers", path)
		}
	}
}

func TestReadyReportsStorageFailure(t *testing.T) {
	srv := NewServer(":0", Options{Pinger: fakePinger{err: errors.New("db gone")}})
	defer srv.Shutdown(context.Background())

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic abc"},
		{"garbage", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/rides", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			env.srv.Handler.ServeHTTP(rr, req)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
		})
	}
}

func TestAPIWithoutVerifierRefusesRequests(t *testing.T) {
	store := memory.New()
	srv := NewServer(":0", Options{History: services.NewHistoryService(store, nil)})
	defer srv.Shutdown(context.Background())

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/rides", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestCreateRideValidationAndSuccess(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"date":`, http.StatusBadRequest},
		{"bad date", `{"date":"not-a-date","distance_miles":5}`, http.StatusUnprocessableEntity},
		{"negative distance", `{"date":"2025-02-03","distance_miles":-1}`, http.StatusUnprocessableEntity},
		{"half coordinates", `{"date":"2025-02-03","distance_miles":3,"latitude":53.9}`, http.StatusUnprocessableEntity},
		{"ok", `{"date":"2025-02-03","distance_miles":8,"location_query":"Otley"}`, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/rides", "u1", tt.body)
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
		})
	}

	rides, _ := env.store.ListRides(context.Background(), "u1")
	if len(rides) != 1 {
		t.Fatalf("expected 1 stored ride, got %d", len(rides))
	}
	if rides[0].LocationName == nil || *rides[0].LocationName != "Otley, England, United Kingdom" {
		t.Fatalf("expected geocoded location, got %v", rides[0].LocationName)
	}
}

func TestRideHistoryGroupsAndInvalidates(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{
		`{"date":"2025-01-10","distance_miles":10,"notes":"hills"}`,
		`{"date":"2025-01-20","distance_miles":5}`,
	} {
		if rr := env.do(t, http.MethodPost, "/api/rides", "u1", body); rr.Code != http.StatusCreated {
			t.Fatalf("seed status %d", rr.Code)
		}
	}

	rr := env.do(t, http.MethodGet, "/api/rides", "u1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status %d", rr.Code)
	}
	got := decode[services.History](t, rr)
	if got.Count != 2 || len(got.Months) != 1 || got.Months[0].TotalDistance != 15 {
		t.Fatalf("unexpected history %+v", got)
	}
	if env.rides.Size() != 1 {
		t.Fatalf("expected rides cached for user")
	}

	// a write must be visible on the next read
	env.do(t, http.MethodPost, "/api/rides", "u1", `{"date":"2025-02-03","distance_miles":8}`)
	got = decode[services.History](t, env.do(t, http.MethodGet, "/api/rides", "u1", ""))
	if got.Count != 3 || len(got.Months) != 2 || got.Months[0].Label != "February 2025" {
		t.Fatalf("expected new month first, got %+v", got)
	}

	got = decode[services.History](t, env.do(t, http.MethodGet, "/api/rides?q=HILLS", "u1", ""))
	if got.Count != 1 {
		t.Fatalf("expected filtered count 1, got %d", got.Count)
	}

	other := decode[services.History](t, env.do(t, http.MethodGet, "/api/rides", "u2", ""))
	if other.Count != 0 {
		t.Fatalf("rides leaked across users: %+v", other)
	}
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/buddies", "u1", `{"name":"Sam"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("buddy status %d", rr.Code)
	}
	sam := decode[core.Buddy](t, rr)

	for _, body := range []string{
		`{"date":"2025-01-10","distance_miles":10}`,
		`{"date":"2025-01-20","distance_miles":5,"buddy_id":"` + sam.ID + `"}`,
		`{"date":"2025-02-03","distance_miles":8,"buddy_id":"gone"}`,
	} {
		if rr := env.do(t, http.MethodPost, "/api/rides", "u1", body); rr.Code != http.StatusCreated {
			t.Fatalf("seed status %d: %s", rr.Code, rr.Body.String())
		}
	}

	rr = env.do(t, http.MethodGet, "/api/dashboard", "u1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status %d", rr.Code)
	}
	dash := decode[services.Dashboard](t, rr)
	if dash.Stats.TotalDistance != 23 || dash.Stats.TotalRides != 3 || dash.Stats.LongestRide != 10 || dash.Stats.RidesThisMonth != 1 {
		t.Fatalf("unexpected stats %+v", dash.Stats)
	}
	if len(dash.Monthly) != 2 || dash.Monthly[0].Distance != 15 || dash.Monthly[1].Distance != 8 {
		t.Fatalf("expected chronological monthly series, got %+v", dash.Monthly)
	}
	if len(dash.Recent) != 3 || dash.Recent[0].Date != "2025-02-03" {
		t.Fatalf("unexpected recent rides %+v", dash.Recent)
	}
	if dash.Recent[0].BuddyName != "" || dash.Recent[1].BuddyName != "Sam" {
		t.Fatalf("unexpected buddy resolution %q %q", dash.Recent[0].BuddyName, dash.Recent[1].BuddyName)
	}
}

func TestBuddies(t *testing.T) {
	env := newTestEnv(t)

	if rr := env.do(t, http.MethodPost, "/api/buddies", "u1", `{"name":"  "}`); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty name, got %d", rr.Code)
	}

	var ids []string
	for _, name := range []string{"zoe", "Alex", "mike"} {
		rr := env.do(t, http.MethodPost, "/api/buddies", "u1", `{"name":"`+name+`"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("create %s: %d", name, rr.Code)
		}
		ids = append(ids, decode[core.Buddy](t, rr).ID)
	}

	list := decode[[]core.Buddy](t, env.do(t, http.MethodGet, "/api/buddies", "u1", ""))
	if len(list) != 3 || list[0].Name != "Alex" || list[1].Name != "mike" || list[2].Name != "zoe" {
		t.Fatalf("expected case-insensitive name order, got %+v", list)
	}

	if rr := env.do(t, http.MethodDelete, "/api/buddies/"+ids[0], "u1", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status %d", rr.Code)
	}
	if rr := env.do(t, http.MethodDelete, "/api/buddies/"+ids[0], "u1", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rr.Code)
	}
	if rr := env.do(t, http.MethodDelete, "/api/buddies/"+ids[1], "u2", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("other users must not delete buddies, got %d", rr.Code)
	}

	empty := env.do(t, http.MethodGet, "/api/buddies", "u2", "")
	if strings.TrimSpace(empty.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", empty.Body.String())
	}
}

func TestGeocode(t *testing.T) {
	env := newTestEnv(t)

	if rr := env.do(t, http.MethodGet, "/api/geocode", "u1", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without q, got %d", rr.Code)
	}

	rr := env.do(t, http.MethodGet, "/api/geocode?q=otley", "u1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("geocode status %d", rr.Code)
	}
	places := decode[[]core.Place](t, rr)
	if len(places) != 1 || places[0].Latitude != 53.9 {
		t.Fatalf("unexpected places %+v", places)
	}

	env.geocoder.err = errors.New("upstream down")
	if rr := env.do(t, http.MethodGet, "/api/geocode?q=leeds", "u1", ""); rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)
	if rr := env.do(t, http.MethodPut, "/api/rides", "u1", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/rides", "u1", "")

	rr := env.do(t, http.MethodGet, "/metrics", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status %d", rr.Code)
	}
	m := decode[metricsResponse](t, rr)
	if m.HTTP.TotalRequests < 1 {
		t.Fatalf("expected counted requests, got %+v", m.HTTP)
	}
	if _, ok := m.Caches["rides"]; !ok {
		t.Fatalf("expected rides cache stats, got %+v", m.Caches)
	}
}

func TestRateLimitedResponse(t *testing.T) {
	store := memory.New()
	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: 1, Burst: 1})
	srv := NewServer(":0", Options{History: services.NewHistoryService(store, nil), Limiter: limiter})
	defer srv.Shutdown(context.Background())

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rr.Code != want {
			t.Fatalf("request %d: expected %d, got %d", i, want, rr.Code)
		}
	}
}
