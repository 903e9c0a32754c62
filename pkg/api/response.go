package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/pulse/pkg/event"
	"github.com/dmitrymomot/pulse/pkg/logger"
	"github.com/dmitrymomot/pulse/pkg/notifications"
)

// Response is the JSON envelope of every API reply.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps err onto a status and error code. Client errors carry
// their message; server errors are logged and answered generically.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, detail := errorToDetail(err)
	if status >= http.StatusInternalServerError {
		log.LogAttrs(r.Context(), slog.LevelError, "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	writeJSON(w, status, Response{Error: detail})
}

func errorToDetail(err error) (int, *ErrorDetail) {
	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError:
		return httpErr.Code, &ErrorDetail{Code: httpErr.Key, Message: clientMessage(err, httpErr)}
	case errors.Is(err, notifications.ErrNotificationNotFound):
		return http.StatusNotFound, &ErrorDetail{Code: ErrNotFound.Key, Message: err.Error()}
	case isEnvelopeError(err):
		return http.StatusUnprocessableEntity, &ErrorDetail{Code: ErrUnprocessable.Key, Message: err.Error()}
	default:
		return http.StatusInternalServerError, &ErrorDetail{
			Code:    ErrInternal.Key,
			Message: http.StatusText(http.StatusInternalServerError),
		}
	}
}

// clientMessage strips the HTTPError key from a joined error so the body
// reads "limit must be ..." instead of "bad_request\nlimit must be ...".
func clientMessage(err error, httpErr HTTPError) string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !errors.Is(e, httpErr) {
				return e.Error()
			}
		}
	}
	return http.StatusText(httpErr.Code)
}

func isEnvelopeError(err error) bool {
	for _, target := range []error{
		event.ErrMissingTargetID,
		event.ErrMissingActorID,
		event.ErrMissingEventType,
		event.ErrInvalidTargetType,
		event.ErrUnknownEventType,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
