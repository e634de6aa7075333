package manager

import (
	"context"
	"time"

	"breedd/internal/registry"
)

// Load builds the classifier handles (once per process) and their admission
// slots. Unusable artifacts do not stop the manager: their handles serve
// untrained networks and the joined ModelLoadErrors are returned alongside a
// ready manager.
func (m *Manager) Load(ctx context.Context) error {
	if m.Ready() {
		return nil
	}
	if m.reg == nil {
		return m.fail(ErrNotReady("no model registry configured"))
	}
	m.publish("load_start", "", nil)
	m.mu.Lock()
	m.state = StateLoading
	m.err = ""
	m.mu.Unlock()

	err := m.reg.Load(ctx)
	set, ok := m.reg.Handles()
	if !ok {
		if err == nil {
			err = ErrNotReady("model registry produced no handles")
		}
		m.publish("load_error", "", map[string]any{"error": err.Error()})
		return m.fail(err)
	}
	m.install(set)
	if err != nil {
		m.mu.Lock()
		m.err = err.Error()
		m.mu.Unlock()
	}
	m.publish("load_ready", set.Stage1.Name, map[string]any{"model_loaded": set.ModelLoaded()})
	return err
}

func (m *Manager) fail(err error) error {
	m.mu.Lock()
	m.state = StateError
	m.err = err.Error()
	m.mu.Unlock()
	return err
}

func (m *Manager) install(set *registry.Set) {
	slots := make(map[string]*handleSlots, len(set.Stage2)+1)
	demo := 0
	for _, c := range set.All() {
		inflight := 1
		if c.Concurrent() {
			inflight = m.maxInflight
		}
		slots[c.Name] = &handleSlots{
			name:     c.Name,
			genCh:    make(chan struct{}, inflight),
			queueCh:  make(chan struct{}, m.maxQueueDepth),
			lastUsed: time.Now(),
		}
		if !c.Loaded() {
			demo++
		}
	}
	m.mu.Lock()
	// A concurrent Load already installed slots that callers may hold.
	if m.set != nil {
		m.mu.Unlock()
		return
	}
	demoModels.Set(float64(demo))
	m.set = set
	m.slots = slots
	m.state = StateReady
	m.mu.Unlock()
}

// ensure loads lazily for callers that skipped Load.
func (m *Manager) ensure(ctx context.Context) (*registry.Set, error) {
	if set, ok := m.Handles(); ok {
		return set, nil
	}
	if err := m.Load(ctx); err != nil && !registry.IsModelLoad(err) {
		return nil, err
	}
	set, ok := m.Handles()
	if !ok {
		return nil, ErrNotReady("models are not loaded")
	}
	return set, nil
}
