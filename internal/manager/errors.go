package manager

import (
	"errors"
	"net/http"
)

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{ modelID string }

func (e tooBusyError) Error() string { return "too busy: " + e.modelID }

func (e tooBusyError) StatusCode() int { return http.StatusTooManyRequests }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	var tb tooBusyError
	return errors.As(err, &tb)
}

// notReadyError signals that the classifiers could not be loaded, so the
// HTTP layer can return 503 instead of 500.
type notReadyError struct{ msg string }

func (e notReadyError) Error() string { return e.msg }

func (e notReadyError) StatusCode() int { return http.StatusServiceUnavailable }

// ErrNotReady constructs a notReadyError.
func ErrNotReady(msg string) error { return notReadyError{msg: msg} }

// IsNotReady reports whether err indicates the pipeline is unavailable.
func IsNotReady(err error) bool {
	var nr notReadyError
	return errors.As(err, &nr)
}
