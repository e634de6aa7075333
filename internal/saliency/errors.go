package saliency

import "errors"

// SaliencyError reports why a heatmap could not be produced. It never
// reaches clients; the prediction is returned without a heatmap.
type SaliencyError struct {
	Model string
	Err   error
}

func (e *SaliencyError) Error() string {
	return "saliency for " + e.Model + ": " + e.Err.Error()
}

func (e *SaliencyError) Unwrap() error { return e.Err }

// ErrUnsupported is wrapped when a network does not expose its last
// convolutional block.
var ErrUnsupported = errors.New("network does not support saliency")

// IsSaliency reports whether err is or wraps a SaliencyError.
func IsSaliency(err error) bool {
	var se *SaliencyError
	return errors.As(err, &se)
}
