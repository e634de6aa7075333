package model

// LoadStatus records how a classifier's weights were obtained.
type LoadStatus int

const (
	// StatusLoaded means task-specific weights were read from disk.
	StatusLoaded LoadStatus = iota
	// StatusDemoFallback means no weights were found and an untrained network is serving.
	StatusDemoFallback
	// StatusFailed means weights were present but unusable; an untrained network is serving.
	StatusFailed
)

func (s LoadStatus) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusDemoFallback:
		return "demo_fallback"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the status as its string form in JSON payloads.
func (s LoadStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
