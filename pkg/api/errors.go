package api

import (
	"errors"
	"net/http"
)

// HTTPError is an error with a status code and a machine-readable key.
type HTTPError struct {
	Code int    // HTTP status code
	Key  string // error code in the response body, e.g. "not_found"
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Key
}

var (
	ErrBadRequest    = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrNotFound      = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrUnprocessable = HTTPError{Code: http.StatusUnprocessableEntity, Key: "validation_error"}
	ErrInternal      = HTTPError{Code: http.StatusInternalServerError, Key: "internal_error"}
)

var (
	ErrMissingUserID = errors.New("userId query parameter is required")
	ErrInvalidLimit  = errors.New("limit must be an integer between 1 and 100")
	ErrInvalidOffset = errors.New("offset must be a non-negative integer")
	ErrInvalidRead   = errors.New("read must be true or false")
	ErrInvalidType   = errors.New("unknown notification type")
	ErrInvalidBody   = errors.New("request body is not a valid event envelope")
	ErrNilService    = errors.New("api: notification service is nil")
	ErrNilPublisher  = errors.New("api: publisher is nil")
)
