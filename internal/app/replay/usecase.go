package replay

import (
	"context"

	"strategos/internal/app/ports"
	"strategos/internal/domain/tactics"
)

type Config struct {
	// HistoryLimit caps how many records one query may return.
	HistoryLimit int
}

func DefaultConfig() Config {
	return Config{HistoryLimit: tactics.DefaultReplayHistoryLimit}
}

// UseCase serves the committed-plan history of an agent from the archive.
type UseCase struct {
	cfg     Config
	archive ports.PlanArchiveRepository
}

func New(cfg Config, archive ports.PlanArchiveRepository) *UseCase {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultConfig().HistoryLimit
	}
	return &UseCase{cfg: cfg, archive: archive}
}

// History returns the most recent committed plans for agentID, newest
// first. limit is clamped to the configured cap; zero means the cap.
func (uc *UseCase) History(ctx context.Context, agentID string, limit int) ([]ports.PlanExecutionRecord, error) {
	if limit <= 0 || limit > uc.cfg.HistoryLimit {
		limit = uc.cfg.HistoryLimit
	}
	return uc.archive.ListByAgentID(ctx, agentID, limit)
}
