package web

// Errors are logged with full technical detail and the request ID, then
// returned to clients as a core.UserMessage rendered as JSON.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/ceap/internal/core"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

var errNoFile = errors.New("no file provided")

// statusFor picks the response status for an import or query error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errNoFile), errors.Is(err, core.ErrUploadInterrupted), core.IsRejected(err):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes its user-facing form.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userErr := core.NewUserError(err)

	level := slog.LevelError
	if statusCode < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userErr.User.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	// Technical text describes the client's own data only for rejected
	// imports. Server failures may carry driver and host details.
	detail := userErr.User.Message
	if core.IsRejected(err) {
		detail = err.Error()
	}

	writeJSONStatus(w, statusCode, ErrorResponse{
		Error:   detail,
		Message: userErr.User.Message,
		Action:  userErr.User.Action,
		Code:    userErr.User.Code,
		Line:    userErr.Line,
	})
}

// respondBadRequest answers a malformed request parameter.
func respondBadRequest(w http.ResponseWriter, msg string) {
	writeJSONStatus(w, http.StatusBadRequest, ErrorResponse{
		Error:   msg,
		Message: msg,
		Code:    "REQ001",
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
