package httpapi

import "time"

// maxBodyBytes controls the maximum allowed request body size for JSON endpoints.
// The default leaves room for a base64 encoded image of maxUploadBytes.
var maxBodyBytes int64 = defaultMaxBodyBytes

const (
	defaultMaxBodyBytes   = 16 << 20
	defaultMaxUploadBytes = 10 << 20
)

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
		return
	}
	maxBodyBytes = n
}

// maxUploadBytes bounds decoded image bytes on both predict endpoints.
var maxUploadBytes int64 = defaultMaxUploadBytes

// SetMaxUploadBytes sets the image size limit. JSON bodies grow with it so a
// base64 payload of the maximum size still fits.
func SetMaxUploadBytes(n int64) {
	if n <= 0 {
		n = defaultMaxUploadBytes
	}
	maxUploadBytes = n
	if need := n/3*4 + 1<<20; need > maxBodyBytes {
		maxBodyBytes = need
	}
}

// allowedExtensions are the accepted upload file extensions.
var allowedExtensions = []string{"jpg", "jpeg", "png", "webp"}

// predictTimeout bounds a predict request. Zero means no additional timeout
// beyond server/connection timeouts.
var predictTimeout time.Duration

// SetPredictTimeout sets the predict timeout (0 disables).
func SetPredictTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	predictTimeout = d
}

// version is reported by GET /.
var version = "dev"

func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
