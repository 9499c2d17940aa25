// Package http serves the ride log JSON API.
//
// This file implements a small builder for JSON responses so handlers share
// one status, header and error envelope convention.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"ridelog/internal/core"
	applog "ridelog/internal/log"
	"ridelog/internal/services"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Data sets the value encoded as the response body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

// Error sets the body to the standard {"error": message} envelope.
func (b *JSONResponseBuilder) Error(message string) *JSONResponseBuilder {
	b.payload = errorBody{Error: message}
	return b
}

type errorBody struct {
	Error string `json:"error"`
}

// Send writes the built response. A 204 never carries a body.
func (b *JSONResponseBuilder) Send(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.statusCode == http.StatusNoContent || b.payload == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	body, err := json.Marshal(b.payload)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(body, '\n'))
}

func BadRequestError(message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusBadRequest).Error(message)
}

func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusUnprocessableEntity).Error(message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusNotFound).Error(message)
}

func InternalServerError(message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusInternalServerError).Error(message)
}

// ErrorFor maps a service error onto a response. Internal details are logged,
// never returned to the client.
func ErrorFor(r *http.Request, op string, err error) *JSONResponseBuilder {
	switch {
	case services.IsValidation(err):
		return UnprocessableEntityError(err.Error())
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError("not found")
	default:
		applog.LogError(r.Context(), "Request failed", err, op, applog.ErrorTypeInternal)
		return InternalServerError("internal error")
	}
}
