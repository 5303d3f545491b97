// internal/app/system/httperr/httperr.go

// Package httperr maps the service's error taxonomy onto JSON HTTP
// responses: Unauthenticated→401, Forbidden→403, NotFound→404,
// ValidationFailed→400, Conflict→409, server faults→500. Validation
// responses carry only the first failing rule, never an aggregate list,
// and server faults never leak internal error text to the caller.
package httperr

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Logger writes JSON error responses and records server-side context via
// zap. Client errors (4xx) are logged at debug level; faults at error.
type Logger struct {
	log *zap.Logger
}

// NewLogger constructs an error Logger.
func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{log: logger}
}

type errBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errBody{Error: msg})
}

// Unauthenticated rejects a request with no valid session. The body is
// deliberately generic.
func (l *Logger) Unauthenticated(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusUnauthorized, "please log in")
}

// Forbidden rejects an authenticated caller who is not authorized for
// this specific action. No partial effect has occurred.
func (l *Logger) Forbidden(w http.ResponseWriter, r *http.Request, msg string) {
	l.log.Debug("forbidden", zap.String("path", r.URL.Path), zap.String("reason", msg))
	writeJSON(w, http.StatusForbidden, msg)
}

// NotFound rejects a request referencing an absent entity.
func (l *Logger) NotFound(w http.ResponseWriter, r *http.Request, msg string) {
	writeJSON(w, http.StatusNotFound, msg)
}

// Validation rejects malformed input with the first failing rule only.
func (l *Logger) Validation(w http.ResponseWriter, r *http.Request, msg string) {
	l.log.Debug("validation failed", zap.String("path", r.URL.Path), zap.String("rule", msg))
	writeJSON(w, http.StatusBadRequest, msg)
}

// Conflict rejects a mutation that would duplicate existing state,
// leaving that state untouched.
func (l *Logger) Conflict(w http.ResponseWriter, r *http.Request, msg string) {
	writeJSON(w, http.StatusConflict, msg)
}

// ServerError logs an internal fault with its cause and returns a generic
// 500 body.
func (l *Logger) ServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error) {
	l.log.Error(logMsg,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, "internal server error")
}
