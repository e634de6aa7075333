package model

import (
	"errors"
	"net/http"
)

// InferenceError reports an unexpected failure during a forward pass, such as
// a vocabulary/output width mismatch. It always indicates a configuration
// defect and is surfaced to the caller.
type InferenceError struct {
	Model string
	Err   error
}

func (e *InferenceError) Error() string {
	return "inference failed for " + e.Model + ": " + e.Err.Error()
}

func (e *InferenceError) Unwrap() error { return e.Err }

// StatusCode maps inference failures to 500.
func (e *InferenceError) StatusCode() int { return http.StatusInternalServerError }

// ErrInference wraps err as an InferenceError for model name.
func ErrInference(name string, err error) error {
	return &InferenceError{Model: name, Err: err}
}

// IsInference reports whether err is (or wraps) an InferenceError.
func IsInference(err error) bool {
	var ie *InferenceError
	return errors.As(err, &ie)
}
