package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"strategos/internal/app/arbiter"
	"strategos/internal/app/ports"
	"strategos/internal/app/replay"
	"strategos/internal/domain/tactics"
	"strategos/internal/domain/world"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

var ErrMissingAgentID = errors.New("missing agent_id")

type Handler struct {
	Arbiter  *arbiter.Arbiter
	ReplayUC *replay.UseCase
	KPI      kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())
	agent := s.Group("/api/agent")
	agent.POST("/plan", h.plan)
	agent.GET("/replay", h.replay)

	s.GET("/ops/kpi", h.kpi)
}

type planRequest struct {
	AgentID  string        `json:"agent_id"`
	Snapshot worldSnapshot `json:"snapshot"`
}

type worldSnapshot struct {
	Tick      int64             `json:"tick"`
	Objective string            `json:"objective,omitempty"`
	Me        agentState        `json:"me"`
	Enemies   []enemyState      `json:"enemies,omitempty"`
	POIs      []pointOfInterest `json:"pois,omitempty"`
	Obstacles []world.Position  `json:"obstacles,omitempty"`
	Bounds    world.Rect        `json:"bounds"`
}

type agentState struct {
	Pos       world.Position `json:"pos"`
	HP        int            `json:"hp"`
	Ammo      int            `json:"ammo"`
	Morale    float64        `json:"morale"`
	Cooldowns map[string]int `json:"cooldowns,omitempty"`
	Items     map[string]int `json:"items,omitempty"`
}

type enemyState struct {
	ID    string         `json:"id"`
	Pos   world.Position `json:"pos"`
	HP    int            `json:"hp"`
	Cover string         `json:"cover,omitempty"`
}

type pointOfInterest struct {
	ID   string         `json:"id"`
	Kind string         `json:"kind"`
	Pos  world.Position `json:"pos"`
}

type planResponse struct {
	Plan        tactics.PlanIntent `json:"plan"`
	Epoch       uint64             `json:"epoch"`
	Fingerprint string             `json:"fingerprint"`
	ResultCode  string             `json:"result_code"`
}

func (h Handler) plan(c context.Context, ctx *app.RequestContext) {
	var body planRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if strings.TrimSpace(body.AgentID) == "" {
		writeError(ctx, ErrMissingAgentID)
		return
	}

	decision := h.Arbiter.Plan(c, toSnapshot(body))
	ctx.JSON(consts.StatusOK, planResponse{
		Plan:        decision.Plan,
		Epoch:       decision.Epoch,
		Fingerprint: strconv.FormatUint(uint64(decision.Fingerprint), 16),
		ResultCode:  string(decision.ResultCode),
	})
}

type replayEntry struct {
	Tick        int64              `json:"tick"`
	Epoch       uint64             `json:"epoch"`
	Fingerprint string             `json:"fingerprint"`
	Plan        tactics.PlanIntent `json:"plan"`
	ResultCode  string             `json:"result_code"`
	CommittedAt string             `json:"committed_at"`
}

func (h Handler) replay(c context.Context, ctx *app.RequestContext) {
	agentID := strings.TrimSpace(string(ctx.Query("agent_id")))
	if agentID == "" {
		writeError(ctx, ErrMissingAgentID)
		return
	}
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))

	records, err := h.ReplayUC.History(c, agentID, limit)
	if err != nil {
		writeError(ctx, err)
		return
	}

	out := make([]replayEntry, 0, len(records))
	for _, r := range records {
		out = append(out, replayEntry{
			Tick:        r.Tick,
			Epoch:       r.Epoch,
			Fingerprint: strconv.FormatUint(r.Fingerprint, 16),
			Plan:        r.Plan,
			ResultCode:  string(r.ResultCode),
			CommittedAt: r.CommittedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	ctx.JSON(consts.StatusOK, map[string]any{"agent_id": agentID, "plans": out})
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func toSnapshot(body planRequest) world.Snapshot {
	snap := world.Snapshot{
		Tick:      body.Snapshot.Tick,
		AgentID:   body.AgentID,
		Objective: body.Snapshot.Objective,
		Me: world.AgentState{
			Position:  body.Snapshot.Me.Pos,
			HP:        body.Snapshot.Me.HP,
			Ammo:      body.Snapshot.Me.Ammo,
			Morale:    body.Snapshot.Me.Morale,
			Cooldowns: body.Snapshot.Me.Cooldowns,
			Items:     body.Snapshot.Me.Items,
		},
		Obstacles: body.Snapshot.Obstacles,
		Bounds:    body.Snapshot.Bounds,
	}
	for _, e := range body.Snapshot.Enemies {
		snap.Enemies = append(snap.Enemies, world.EnemyState{
			ID: e.ID, Position: e.Pos, HP: e.HP, Cover: world.CoverKind(e.Cover),
		})
	}
	for _, p := range body.Snapshot.POIs {
		snap.POIs = append(snap.POIs, world.PointOfInterest{ID: p.ID, Kind: p.Kind, Position: p.Pos})
	}
	return snap
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, ErrMissingAgentID):
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_agent_id", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
