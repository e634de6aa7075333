package manager

import (
	"context"
	"time"
)

// beginEvaluation reserves a queue slot and then an in-flight slot on the
// named classifier. Returns a release func to be deferred.
func (m *Manager) beginEvaluation(ctx context.Context, name string) (func(), error) {
	m.mu.RLock()
	sl := m.slots[name]
	m.mu.RUnlock()
	if sl == nil {
		return func() {}, ErrNotReady("no admission slots for " + name)
	}

	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}

	timer := time.NewTimer(m.maxWait)
	defer timer.Stop()
	select {
	case sl.queueCh <- struct{}{}:
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, m.reject(name, "queue")
	}

	acquired := false
	defer func() {
		if !acquired {
			<-sl.queueCh
		}
	}()
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	timer2 := time.NewTimer(m.maxWait)
	defer timer2.Stop()
	select {
	case sl.genCh <- struct{}{}:
		acquired = true
		m.mu.Lock()
		sl.lastUsed = time.Now()
		m.mu.Unlock()
		return func() { <-sl.genCh; <-sl.queueCh }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer2.C:
		return func() {}, m.reject(name, "inflight")
	}
}

func (m *Manager) reject(name, stage string) error {
	m.rejected.Add(1)
	rejectionsTotal.WithLabelValues(name, stage).Inc()
	return tooBusyError{modelID: name}
}
