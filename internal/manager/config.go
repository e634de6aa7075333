package manager

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"breedd/internal/registry"
	"breedd/internal/saliency"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultTopK          = 3
)

func defaultMaxInflight() int { return runtime.NumCPU() }

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Registry *registry.Registry
	// Saliency produces heatmaps; nil disables them.
	Saliency *saliency.Engine
	TopK     int
	// MaxQueueDepth bounds callers admitted per classifier.
	MaxQueueDepth int
	MaxWait       time.Duration
	// MaxInflight bounds parallel evaluations of classifiers that allow them.
	MaxInflight int
	Logger      *zerolog.Logger
	Publisher   EventPublisher
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		state:  StateLoading,
		reg:    cfg.Registry,
		engine: cfg.Saliency,
		log:    zerolog.Nop(),
		pub:    noopPublisher{},
	}
	if cfg.TopK <= 0 {
		m.topK = defaultTopK
	} else {
		m.topK = cfg.TopK
	}
	if cfg.MaxQueueDepth <= 0 {
		m.maxQueueDepth = defaultMaxQueueDepth
	} else {
		m.maxQueueDepth = cfg.MaxQueueDepth
	}
	if cfg.MaxWait <= 0 {
		m.maxWait = defaultMaxWait
	} else {
		m.maxWait = cfg.MaxWait
	}
	if cfg.MaxInflight <= 0 {
		m.maxInflight = defaultMaxInflight()
	} else {
		m.maxInflight = cfg.MaxInflight
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "manager").Logger()
	}
	if cfg.Publisher != nil {
		m.pub = cfg.Publisher
	}
	m.startTime = time.Now()
	return m
}
