package registry

import "errors"

// ModelLoadError reports weights or a vocabulary that exist but cannot be
// used. The affected handle is marked failed and served by an untrained
// network.
type ModelLoadError struct {
	Model string
	Path  string
	Err   error
}

func (e *ModelLoadError) Error() string {
	return "load " + e.Model + " (" + e.Path + "): " + e.Err.Error()
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// IsModelLoad reports whether err is or contains a ModelLoadError.
func IsModelLoad(err error) bool {
	var le *ModelLoadError
	return errors.As(err, &le)
}
