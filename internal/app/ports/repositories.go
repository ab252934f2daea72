package ports

import (
	"context"
	"time"

	"strategos/internal/domain/tactics"
)

// PlanExecutionRecord is one committed plan, archived for replay and offline
// tuning. Steps are stored by value; the record never references live state.
type PlanExecutionRecord struct {
	AgentID     string
	Tick        int64
	Epoch       uint64
	Fingerprint uint64
	Plan        tactics.PlanIntent
	ResultCode  tactics.ResultCode
	CommittedAt time.Time
}

type PlanArchiveRepository interface {
	Append(ctx context.Context, record PlanExecutionRecord) error
	ListByAgentID(ctx context.Context, agentID string, limit int) ([]PlanExecutionRecord, error)
}
