package model

import "time"

type PlanExecution struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	AgentID     string    `gorm:"column:agent_id;index:idx_plan_executions_agent_tick,priority:1"`
	Tick        int64     `gorm:"column:tick;index:idx_plan_executions_agent_tick,priority:2"`
	Epoch       int64     `gorm:"column:epoch"`
	Fingerprint string    `gorm:"column:fingerprint"`
	PlanID      string    `gorm:"column:plan_id"`
	Provenance  string    `gorm:"column:provenance"`
	ResultCode  string    `gorm:"column:result_code"`
	Steps       []byte    `gorm:"column:steps"`
	CommittedAt time.Time `gorm:"column:committed_at"`
}

func (PlanExecution) TableName() string { return "plan_executions" }
