package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"breedd/internal/registry"
)

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Model describes one classifier artifact and its fallback vocabulary.
type Model struct {
	Name       string   `json:"name" yaml:"name" toml:"name"`
	AnimalType string   `json:"animal_type,omitempty" yaml:"animal_type,omitempty" toml:"animal_type,omitempty"`
	Weights    string   `json:"weights,omitempty" yaml:"weights,omitempty" toml:"weights,omitempty"`
	Classes    string   `json:"classes,omitempty" yaml:"classes,omitempty" toml:"classes,omitempty"`
	Vocabulary []string `json:"vocabulary,omitempty" yaml:"vocabulary,omitempty" toml:"vocabulary,omitempty"`
}

type Models struct {
	Stage1 Model   `json:"stage1" yaml:"stage1" toml:"stage1"`
	Stage2 []Model `json:"stage2" yaml:"stage2" toml:"stage2"`
}

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	BreedData string `json:"breed_data" yaml:"breed_data" toml:"breed_data"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	// LogFormat is "json" or "console".
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`

	ONNXLibrary string `json:"onnx_library" yaml:"onnx_library" toml:"onnx_library"`
	Backbone    string `json:"backbone" yaml:"backbone" toml:"backbone"`
	Seed        int64  `json:"seed" yaml:"seed" toml:"seed"`

	TopK           int      `json:"top_k" yaml:"top_k" toml:"top_k"`
	MaxQueueDepth  int      `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxWait        Duration `json:"max_wait" yaml:"max_wait" toml:"max_wait"`
	MaxInflight    int      `json:"max_inflight" yaml:"max_inflight" toml:"max_inflight"`
	GradCAMOpacity float64  `json:"gradcam_opacity" yaml:"gradcam_opacity" toml:"gradcam_opacity"`
	// DisableGradCAM turns heatmap generation off for every request.
	DisableGradCAM bool `json:"disable_gradcam" yaml:"disable_gradcam" toml:"disable_gradcam"`

	MaxUploadBytes int64    `json:"max_upload_bytes" yaml:"max_upload_bytes" toml:"max_upload_bytes"`
	RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
	CORSOrigins    []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`

	Models Models `json:"models" yaml:"models" toml:"models"`
}

// Defaults.
const (
	DefaultAddr           = ":8000"
	DefaultModelsDir      = "ml_models"
	DefaultBreedData      = "data/breed_info.json"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultTopK           = 3
	DefaultMaxQueueDepth  = 32
	DefaultMaxWait        = Duration(30 * time.Second)
	DefaultGradCAMOpacity = 0.5
	DefaultMaxUploadBytes = 10 << 20
	DefaultRequestTimeout = Duration(60 * time.Second)
)

// DefaultModels mirrors the artifact layout the classifiers were trained for.
func DefaultModels() Models {
	return Models{
		Stage1: Model{
			Name:       "cattle_buffalo_classifier",
			Classes:    "classes.json",
			Vocabulary: []string{"cattle", "buffalo"},
		},
		Stage2: []Model{
			{
				Name:       "cattle_breed_classifier",
				AnimalType: "cattle",
				Classes:    "cattle_classes.json",
				Vocabulary: []string{"Gir", "Ayrshire", "Hallikar", "Kenkatha"},
			},
			{
				Name:       "buffalo_breed_classifier",
				AnimalType: "buffalo",
				Classes:    "buffalo_classes.json",
				Vocabulary: []string{"Jaffarabadi", "murrah", "nili-ravi", "gojri"},
			},
		},
	}
}

// Default returns a fully populated configuration.
func Default() Config {
	return Config{}.WithDefaults()
}

// WithDefaults fills unspecified fields. The models section is replaced as a
// whole only when neither stage is configured.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ModelsDir == "" {
		c.ModelsDir = DefaultModelsDir
	}
	if c.BreedData == "" {
		c.BreedData = DefaultBreedData
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.TopK == 0 {
		c.TopK = DefaultTopK
	}
	if c.MaxQueueDepth == 0 {
		c.MaxQueueDepth = DefaultMaxQueueDepth
	}
	if c.MaxWait == 0 {
		c.MaxWait = DefaultMaxWait
	}
	if c.GradCAMOpacity == 0 {
		c.GradCAMOpacity = DefaultGradCAMOpacity
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.Models.Stage1.Name == "" && len(c.Models.Stage2) == 0 {
		c.Models = DefaultModels()
	}
	return c
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.LogFormat {
	case "", "json", "console":
	default:
		return fmt.Errorf("log_format must be json or console, got %q", c.LogFormat)
	}
	if c.TopK < 0 || c.MaxQueueDepth < 0 || c.MaxInflight < 0 || c.MaxUploadBytes < 0 {
		return fmt.Errorf("top_k, max_queue_depth, max_inflight and max_upload_bytes must not be negative")
	}
	if c.MaxWait < 0 || c.RequestTimeout < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if c.GradCAMOpacity < 0 || c.GradCAMOpacity > 1 {
		return fmt.Errorf("gradcam_opacity must be within [0,1], got %v", c.GradCAMOpacity)
	}
	if c.Models.Stage1.Name == "" {
		return fmt.Errorf("models.stage1.name is required")
	}
	if len(c.Models.Stage2) == 0 {
		return fmt.Errorf("models.stage2 needs at least one classifier")
	}
	seen := map[string]bool{}
	for i, m := range c.Models.Stage2 {
		if m.Name == "" || m.AnimalType == "" {
			return fmt.Errorf("models.stage2[%d]: name and animal_type are required", i)
		}
		key := strings.ToLower(m.AnimalType)
		if seen[key] {
			return fmt.Errorf("models.stage2: duplicate animal_type %q", m.AnimalType)
		}
		seen[key] = true
	}
	return nil
}

// Registry converts the models section into a registry configuration.
func (c Config) Registry(log *zerolog.Logger) registry.Config {
	rc := registry.Config{
		Dir:         c.ModelsDir,
		Stage1:      c.Models.Stage1.spec(),
		ONNXLibrary: c.ONNXLibrary,
		Backbone:    c.Backbone,
		Seed:        c.Seed,
		Logger:      log,
	}
	for _, m := range c.Models.Stage2 {
		rc.Stage2 = append(rc.Stage2, m.spec())
	}
	return rc
}

func (m Model) spec() registry.ModelSpec {
	return registry.ModelSpec{
		Name:       m.Name,
		AnimalType: m.AnimalType,
		Weights:    m.Weights,
		Classes:    m.Classes,
		Vocabulary: append([]string(nil), m.Vocabulary...),
	}
}
