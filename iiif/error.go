package iiif

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a failed IIIF request. StatusCode is the HTTP status
// the caller should answer with and Parameter names the offending
// request parameter, when there is one.
type Error struct {
	StatusCode int
	Parameter  string
	Message    string
}

// Error formats the error message.
func (e Error) Error() string {
	if e.Parameter == "" {
		return fmt.Sprintf("%d (%s) %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("%d (%s) `%s` %s", e.StatusCode, http.StatusText(e.StatusCode), e.Parameter, e.Message)
}

// ZeroSizeError is an Error raised when syntactically valid parameters
// produce an empty result image.
type ZeroSizeError struct {
	Err Error
}

// Error formats the underlying error message.
func (e ZeroSizeError) Error() string {
	return e.Err.Error()
}

// Unwrap exposes the underlying Error to errors.As.
func (e ZeroSizeError) Unwrap() error {
	return e.Err
}

// StatusOf extracts the HTTP status code carried by err, or 500 when
// err isn't an Error.
func StatusOf(err error) int {
	var e Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}
