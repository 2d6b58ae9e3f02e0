package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"dreamchain/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// errForbidden is returned when an authenticated caller acts for another wallet
var errForbidden = errors.New("forbidden")

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

// writeError maps service errors onto HTTP status codes
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, kind := errorStatus(err)

	fields := log.Fields{
		"method":    r.Method,
		"path":      r.URL.Path,
		"status":    code,
		"requestId": middleware.GetReqID(r.Context()),
		"error":     err,
	}
	message := err.Error()
	if code >= http.StatusInternalServerError && code != http.StatusServiceUnavailable {
		log.WithFields(fields).Error("Request failed")
		message = "internal server error"
	} else {
		log.WithFields(fields).Debug("Request rejected")
	}

	writeJSON(w, code, errorResponse{
		Error:     kind,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, errForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return invalidInput("invalid JSON body")
	}
	return nil
}

func invalidInput(msg string) error {
	return &inputError{msg: msg}
}

type inputError struct {
	msg string
}

func (e *inputError) Error() string { return service.ErrInvalidInput.Error() + ": " + e.msg }
func (e *inputError) Unwrap() error { return service.ErrInvalidInput }

// pathID parses a positive integer URL parameter
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidInput(name + " must be a positive integer")
	}
	return id, nil
}

// queryInt reads an optional integer query parameter
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidInput(name + " must be an integer")
	}
	return v, nil
}
