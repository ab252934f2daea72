package memory

import (
	"context"
	"sync"

	"strategos/internal/app/ports"
)

// PlanArchiveRepo keeps committed plans in process memory. It backs
// deployments without a database and every test that touches the archive.
type PlanArchiveRepo struct {
	mu      sync.RWMutex
	byAgent map[string][]ports.PlanExecutionRecord
}

func NewPlanArchiveRepo() *PlanArchiveRepo {
	return &PlanArchiveRepo{byAgent: make(map[string][]ports.PlanExecutionRecord)}
}

func (r *PlanArchiveRepo) Append(_ context.Context, record ports.PlanExecutionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byAgent[record.AgentID] = append(r.byAgent[record.AgentID], record)
	return nil
}

// ListByAgentID returns records newest-first. An agent with no history is
// ports.ErrNotFound, matching the gorm adapter.
func (r *PlanArchiveRepo) ListByAgentID(_ context.Context, agentID string, limit int) ([]ports.PlanExecutionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.byAgent[agentID]
	if len(records) == 0 {
		return nil, ports.ErrNotFound
	}
	if limit <= 0 || limit > len(records) {
		limit = len(records)
	}
	out := make([]ports.PlanExecutionRecord, 0, limit)
	for i := len(records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, records[i])
	}
	return out, nil
}
