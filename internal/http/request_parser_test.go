package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims", "  Otley  ", "Otley"},
		{"keeps newlines and tabs", "hill\tclimb\nfast", "hill\tclimb\nfast"},
		{"strips control chars", "bad\x00name\x07", "badname"},
		{"strips delete", "a\x7fb", "ab"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeInput(tt.input); got != tt.want {
				t.Errorf("sanitizeInput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseRideInput(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		check   func(t *testing.T, date, notes, query string, lat *float64)
	}{
		{
			name: "full ride",
			body: `{"date":" 2025-02-03 ","distance_miles":12.5,"notes":"windy\u0000","location_query":"Otley","latitude":53.9,"longitude":-1.69}`,
			check: func(t *testing.T, date, notes, query string, lat *float64) {
				if date != "2025-02-03" || notes != "windy" || query != "Otley" {
					t.Errorf("unexpected fields %q %q %q", date, notes, query)
				}
				if lat == nil || *lat != 53.9 {
					t.Errorf("latitude = %v", lat)
				}
			},
		},
		{name: "empty body", body: ``, wantErr: true},
		{name: "unknown field", body: `{"date":"2025-02-03","speed":30}`, wantErr: true},
		{name: "trailing object", body: `{"date":"2025-02-03"}{"date":"x"}`, wantErr: true},
		{name: "wrong type", body: `{"distance_miles":"far"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/rides", strings.NewReader(tt.body))
			in, err := ParseRideInput(httptest.NewRecorder(), r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, in.Date, in.Notes, in.LocationQuery, in.Latitude)
			}
		})
	}
}

func TestParseBuddyInput(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/buddies", strings.NewReader(`{"name":"  Sam ","notes":"tandem"}`))
	in, err := ParseBuddyInput(httptest.NewRecorder(), r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Name != "Sam" || in.Notes != "tandem" {
		t.Fatalf("unexpected input %+v", in)
	}
}

func TestQueryParamIsLimited(t *testing.T) {
	long := strings.Repeat("a", maxQueryRunes+50)
	r := httptest.NewRequest(http.MethodGet, "/api/rides?q="+long, nil)
	if got := queryParam(r, "q"); len(got) != maxQueryRunes {
		t.Fatalf("expected %d runes, got %d", maxQueryRunes, len(got))
	}
}
