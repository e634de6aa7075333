package preprocess

import (
	"errors"
	"net/http"
)

// InvalidImageError means the input bytes are not a decodable image.
type InvalidImageError struct {
	Reason string
	Err    error
}

func (e *InvalidImageError) Error() string {
	switch {
	case e.Reason != "" && e.Err != nil:
		return "invalid image: " + e.Reason + ": " + e.Err.Error()
	case e.Err != nil:
		return "invalid image: " + e.Err.Error()
	case e.Reason != "":
		return "invalid image: " + e.Reason
	}
	return "invalid image"
}

func (e *InvalidImageError) Unwrap() error { return e.Err }

func (e *InvalidImageError) StatusCode() int { return http.StatusBadRequest }

// ErrInvalidImage builds an InvalidImageError with a reason.
func ErrInvalidImage(reason string) error { return &InvalidImageError{Reason: reason} }

// IsInvalidImage reports whether err is (or wraps) an InvalidImageError.
func IsInvalidImage(err error) bool {
	var ie *InvalidImageError
	return errors.As(err, &ie)
}
