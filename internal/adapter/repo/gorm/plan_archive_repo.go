package gormrepo

import (
	"context"
	"encoding/json"
	"strconv"

	"strategos/internal/adapter/repo/gorm/model"
	"strategos/internal/app/ports"
	"strategos/internal/domain/tactics"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlanArchiveRepo struct {
	db *gorm.DB
}

func NewPlanArchiveRepo(db *gorm.DB) PlanArchiveRepo {
	return PlanArchiveRepo{db: db}
}

func (r PlanArchiveRepo) Append(ctx context.Context, record ports.PlanExecutionRecord) error {
	stepsJSON, _ := json.Marshal(record.Plan.Steps)
	m := model.PlanExecution{
		AgentID:     record.AgentID,
		Tick:        record.Tick,
		Epoch:       int64(record.Epoch),
		Fingerprint: strconv.FormatUint(record.Fingerprint, 16),
		PlanID:      record.Plan.PlanID,
		Provenance:  string(record.Plan.Provenance),
		ResultCode:  string(record.ResultCode),
		Steps:       stepsJSON,
		CommittedAt: record.CommittedAt,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r PlanArchiveRepo) ListByAgentID(ctx context.Context, agentID string, limit int) ([]ports.PlanExecutionRecord, error) {
	rows := []model.PlanExecution{}
	query := r.db.WithContext(ctx).
		Where(&model.PlanExecution{AgentID: agentID}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "tick"}, Desc: true}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}

	out := make([]ports.PlanExecutionRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, decodeRecord(row))
	}
	return out, nil
}

func decodeRecord(row model.PlanExecution) ports.PlanExecutionRecord {
	var steps []tactics.ActionStep
	if len(row.Steps) > 0 {
		_ = json.Unmarshal(row.Steps, &steps)
	}
	fp, _ := strconv.ParseUint(row.Fingerprint, 16, 64)
	return ports.PlanExecutionRecord{
		AgentID:     row.AgentID,
		Tick:        row.Tick,
		Epoch:       uint64(row.Epoch),
		Fingerprint: fp,
		Plan: tactics.PlanIntent{
			PlanID:     row.PlanID,
			Provenance: tactics.Provenance(row.Provenance),
			Steps:      steps,
		},
		ResultCode:  tactics.ResultCode(row.ResultCode),
		CommittedAt: row.CommittedAt,
	}
}
