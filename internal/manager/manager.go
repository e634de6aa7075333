package manager

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"breedd/internal/registry"
	"breedd/internal/saliency"
)

type Manager struct {
	mu    sync.RWMutex
	state State
	err   string
	reg   *registry.Registry
	set   *registry.Set
	slots map[string]*handleSlots

	engine        *saliency.Engine
	topK          int
	maxQueueDepth int
	maxInflight   int
	maxWait       time.Duration

	log       zerolog.Logger
	pub       EventPublisher
	startTime time.Time

	predictions atomic.Uint64
	rejected    atomic.Uint64
}

// New builds a manager over reg with package defaults.
func New(reg *registry.Registry, engine *saliency.Engine) *Manager {
	return NewWithConfig(ManagerConfig{Registry: reg, Saliency: engine})
}

// SetEventPublisher replaces the event sink.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	if p == nil {
		p = noopPublisher{}
	}
	m.mu.Lock()
	m.pub = p
	m.mu.Unlock()
}

func (m *Manager) publish(name PipelineState, model string, fields map[string]any) {
	m.mu.RLock()
	p := m.pub
	m.mu.RUnlock()
	p.Publish(Event{Name: string(name), ModelID: model, Fields: fields})
}

// Ready reports whether predictions can be served.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateReady && m.set != nil
}

// ModelLoaded is true only when every classifier serves trained weights.
func (m *Manager) ModelLoaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.set != nil && m.set.ModelLoaded()
}

// Handles returns the loaded classifier set.
func (m *Manager) Handles() (*registry.Set, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.set, m.set != nil
}

// TopK is the configured ranking length.
func (m *Manager) TopK() int { return m.topK }

// SaliencyEnabled reports whether heatmaps can be requested.
func (m *Manager) SaliencyEnabled() bool { return m.engine != nil }

// Close releases the registry's handles.
func (m *Manager) Close() error {
	if m.reg == nil {
		return nil
	}
	return m.reg.Close()
}
