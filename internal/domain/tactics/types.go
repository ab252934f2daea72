package tactics

import "strategos/internal/domain/world"

type ActionKind string

const (
	ActionMoveTo      ActionKind = "move_to"
	ActionAttack      ActionKind = "attack"
	ActionMelee       ActionKind = "melee"
	ActionTakeCover   ActionKind = "take_cover"
	ActionUseItem     ActionKind = "use_item"
	ActionCallSupport ActionKind = "call_support"
	ActionWait        ActionKind = "wait"
)

// ActionStep is one discrete action. The kind discriminates which params are
// meaningful; every field is a plain value so a plan can be validated and
// transmitted without touching live simulation state.
type ActionStep struct {
	Kind          ActionKind      `json:"kind"`
	Pos           *world.Position `json:"pos,omitempty"`
	TargetID      string          `json:"target_id,omitempty"`
	Item          string          `json:"item,omitempty"`
	DurationTicks int             `json:"duration_ticks,omitempty"`
}

type Provenance string

const (
	ProvenanceCache      Provenance = "cache"
	ProvenanceClassical  Provenance = "classical"
	ProvenanceGenerative Provenance = "generative"
	ProvenanceFallback   Provenance = "fallback"
)

// PlanIntent is an ordered action sequence committed as a single unit.
// Validation accepts or rejects the whole plan; a partially valid PlanIntent
// never exists.
type PlanIntent struct {
	PlanID     string       `json:"plan_id"`
	Provenance Provenance   `json:"provenance"`
	Steps      []ActionStep `json:"steps"`
}

type ResultCode string

const (
	ResultOK       ResultCode = "OK"
	ResultDegraded ResultCode = "DEGRADED"
)

// SafeDefault is the plan of last resort: hold position for one tick.
// The arbiter commits it when every planning tier is unavailable, which
// keeps "no plan produced" unreachable.
func SafeDefault(planID string) PlanIntent {
	return PlanIntent{
		PlanID:     planID,
		Provenance: ProvenanceFallback,
		Steps:      []ActionStep{{Kind: ActionWait, DurationTicks: SafeDefaultWaitTicks}},
	}
}
