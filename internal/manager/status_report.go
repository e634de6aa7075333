package manager

import (
	"time"

	"breedd/pkg/types"
)

// Snapshot returns a read-only view of the manager state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{State: m.state, Err: m.err}
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp := types.StatusResponse{
		State:            string(m.state),
		Error:            m.err,
		UptimeSeconds:    int64(time.Since(m.startTime).Seconds()),
		ServerTimeUnix:   time.Now().Unix(),
		PredictionsTotal: m.predictions.Load(),
		RejectedTotal:    m.rejected.Load(),
		Models:           []types.ModelStatus{},
	}
	if m.reg != nil {
		resp.LoadsTotal = m.reg.Loads()
	}
	if m.set == nil {
		return resp
	}
	resp.ModelLoaded = m.set.ModelLoaded()
	resp.Models = m.set.Describe()
	for i := range resp.Models {
		sl := m.slots[resp.Models[i].Name]
		if sl == nil {
			continue
		}
		resp.Models[i].QueueLen = len(sl.queueCh)
		resp.Models[i].Inflight = len(sl.genCh)
		resp.Models[i].MaxQueueDepth = cap(sl.queueCh)
		resp.Models[i].MaxInflight = cap(sl.genCh)
	}
	return resp
}
