package breeds

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// NotFoundError reports an unknown breed or state.
type NotFoundError struct {
	Kind      string
	Key       string
	Available []string
}

func (e *NotFoundError) Error() string {
	if len(e.Available) > 0 {
		return fmt.Sprintf("%s '%s' not found. Available %ss: %s", e.Kind, e.Key, e.Kind, strings.Join(e.Available, ", "))
	}
	return fmt.Sprintf("%s '%s' not found", capitalize(e.Kind), e.Key)
}

func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// QueryError is a malformed catalog query (bad filter, wrong breed count).
type QueryError struct {
	Msg string
}

func (e *QueryError) Error() string   { return e.Msg }
func (e *QueryError) StatusCode() int { return http.StatusBadRequest }

// IsQuery reports whether err is a QueryError.
func IsQuery(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}

// ErrNotLoaded is returned by every query on an empty catalog.
var ErrNotLoaded = &unavailableError{}

type unavailableError struct{}

func (*unavailableError) Error() string   { return "Breed data not loaded" }
func (*unavailableError) StatusCode() int { return http.StatusInternalServerError }

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
