// Package http serves the ride log JSON API.
//
// This file implements utilities for decoding and cleaning request data so
// handlers do not repeat body limits and input sanitization.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ridelog/internal/services"
)

const (
	maxBodyBytes  = 1 << 20
	maxQueryRunes = 200
)

var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads a single JSON object from the request body into dst.
// Unknown fields and trailing data are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("decode request body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// queryParam returns a cleaned, length-limited query value.
func queryParam(r *http.Request, key string) string {
	v := sanitizeInput(r.URL.Query().Get(key))
	if runes := []rune(v); len(runes) > maxQueryRunes {
		v = string(runes[:maxQueryRunes])
	}
	return v
}

// ParseRideInput decodes and cleans a ride submission.
func ParseRideInput(w http.ResponseWriter, r *http.Request) (services.RideInput, error) {
	var in services.RideInput
	if err := decodeJSON(w, r, &in); err != nil {
		return services.RideInput{}, err
	}
	in.Date = sanitizeInput(in.Date)
	in.Notes = sanitizeInput(in.Notes)
	in.LocationQuery = sanitizeInput(in.LocationQuery)
	in.LocationName = sanitizeInput(in.LocationName)
	in.BuddyID = sanitizeInput(in.BuddyID)
	return in, nil
}

// ParseBuddyInput decodes and cleans a buddy submission.
func ParseBuddyInput(w http.ResponseWriter, r *http.Request) (services.BuddyInput, error) {
	var in services.BuddyInput
	if err := decodeJSON(w, r, &in); err != nil {
		return services.BuddyInput{}, err
	}
	in.Name = sanitizeInput(in.Name)
	in.Notes = sanitizeInput(in.Notes)
	return in, nil
}

// pathID returns the trimmed {id} path value.
func pathID(r *http.Request) string {
	return strings.TrimSpace(r.PathValue("id"))
}
