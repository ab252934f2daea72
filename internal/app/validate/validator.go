package validate

import (
	"errors"

	"strategos/internal/domain/tactics"
	"strategos/internal/domain/world"
)

var (
	ErrEmptyPlan            = errors.New("plan has no steps")
	ErrPlanTooLong          = errors.New("plan exceeds max steps")
	ErrUnknownAction        = errors.New("unknown action kind")
	ErrActionNotPermitted   = errors.New("action kind not permitted in scenario")
	ErrInvalidActionParams  = errors.New("invalid action params")
	ErrTargetNotVisible     = errors.New("target not present in snapshot")
	ErrOutOfBounds          = errors.New("position out of bounds")
	ErrCooldownActive       = errors.New("action cooldown active")
	ErrInsufficientResource = errors.New("insufficient resource")
	ErrNoLineOfSight        = errors.New("no line of sight")
	ErrNoPath               = errors.New("no path to position")
	ErrTargetOutOfRange     = errors.New("target out of range")
)

type CooldownActiveError struct {
	Kind           tactics.ActionKind
	StepIndex      int
	RemainingTicks int
}

func (e *CooldownActiveError) Error() string { return ErrCooldownActive.Error() }
func (e *CooldownActiveError) Unwrap() error { return ErrCooldownActive }

type InsufficientResourceError struct {
	Kind      tactics.ActionKind
	StepIndex int
	Resource  string
}

func (e *InsufficientResourceError) Error() string { return ErrInsufficientResource.Error() }
func (e *InsufficientResourceError) Unwrap() error { return ErrInsufficientResource }

// Config restricts the vocabulary per scenario and bounds plan size. A zero
// Permitted set means the full vocabulary is allowed.
type Config struct {
	Permitted    map[tactics.ActionKind]bool
	MaxPlanSteps int
	PathNodes    int
}

func DefaultConfig() Config {
	return Config{
		MaxPlanSteps: tactics.MaxPlanSteps,
		PathNodes:    tactics.DefaultPathNodes,
	}
}

type Validator struct {
	cfg   Config
	vocab map[tactics.ActionKind]tactics.KindSpec
}

func New(cfg Config) Validator {
	def := DefaultConfig()
	if cfg.MaxPlanSteps <= 0 {
		cfg.MaxPlanSteps = def.MaxPlanSteps
	}
	if cfg.PathNodes <= 0 {
		cfg.PathNodes = def.PathNodes
	}
	return Validator{cfg: cfg, vocab: tactics.Vocabulary()}
}

// Validate accepts or rejects the candidate as a single unit against the
// snapshot. Steps are checked against a forward-simulated ledger so a plan
// that runs out of ammo or re-triggers a cooldown mid-sequence is rejected
// even though its first step alone would pass. Repairable gaps (a missing
// duration) are filled with the vocabulary default instead of rejecting.
// The returned plan is the repaired candidate; on error it is unusable.
func (v Validator) Validate(candidate tactics.PlanIntent, snap world.Snapshot) (tactics.PlanIntent, error) {
	if len(candidate.Steps) == 0 {
		return tactics.PlanIntent{}, ErrEmptyPlan
	}
	if len(candidate.Steps) > v.cfg.MaxPlanSteps {
		return tactics.PlanIntent{}, ErrPlanTooLong
	}

	ledger := newLedger(snap)
	repaired := candidate
	repaired.Steps = make([]tactics.ActionStep, len(candidate.Steps))
	copy(repaired.Steps, candidate.Steps)

	for i := range repaired.Steps {
		step := &repaired.Steps[i]
		spec, ok := v.vocab[step.Kind]
		if !ok {
			return tactics.PlanIntent{}, ErrUnknownAction
		}
		if v.cfg.Permitted != nil && !v.cfg.Permitted[step.Kind] {
			return tactics.PlanIntent{}, ErrActionNotPermitted
		}
		if err := v.checkParams(step, spec, snap); err != nil {
			return tactics.PlanIntent{}, err
		}
		if err := v.checkPreconditions(i, *step, spec, snap, ledger); err != nil {
			return tactics.PlanIntent{}, err
		}
		ledger.apply(*step, spec)
	}
	return repaired, nil
}

func (v Validator) checkParams(step *tactics.ActionStep, spec tactics.KindSpec, snap world.Snapshot) error {
	if spec.NeedsTarget {
		if step.TargetID == "" {
			return ErrInvalidActionParams
		}
		if _, ok := snap.Enemy(step.TargetID); !ok {
			return ErrTargetNotVisible
		}
	}
	if spec.NeedsPos {
		if step.Pos == nil {
			return ErrInvalidActionParams
		}
		if !snap.Bounds.Contains(*step.Pos) {
			return ErrOutOfBounds
		}
	}
	if spec.NeedsItem && step.Item == "" {
		return ErrInvalidActionParams
	}
	if step.DurationTicks < 0 {
		return ErrInvalidActionParams
	}
	if step.DurationTicks == 0 && spec.DefaultTicks > 0 {
		step.DurationTicks = spec.DefaultTicks
	}
	return nil
}

func (v Validator) checkPreconditions(idx int, step tactics.ActionStep, spec tactics.KindSpec, snap world.Snapshot, led *ledger) error {
	if spec.CooldownKey != "" {
		if remaining := led.cooldown(spec.CooldownKey); remaining > 0 {
			return &CooldownActiveError{Kind: step.Kind, StepIndex: idx, RemainingTicks: remaining}
		}
	}
	if spec.AmmoCost > 0 && led.ammo < spec.AmmoCost {
		return &InsufficientResourceError{Kind: step.Kind, StepIndex: idx, Resource: "ammo"}
	}
	if spec.NeedsItem && led.item(step.Item) <= 0 {
		return &InsufficientResourceError{Kind: step.Kind, StepIndex: idx, Resource: step.Item}
	}

	switch step.Kind {
	case tactics.ActionMoveTo, tactics.ActionTakeCover:
		if !world.PathExists(snap, led.pos, *step.Pos, v.cfg.PathNodes) {
			return ErrNoPath
		}
	case tactics.ActionAttack:
		enemy, _ := snap.Enemy(step.TargetID)
		if world.Distance(led.pos, enemy.Position) > spec.MaxRange {
			return ErrTargetOutOfRange
		}
		if !world.LineOfSight(snap, led.pos, enemy.Position) {
			return ErrNoLineOfSight
		}
	case tactics.ActionMelee:
		enemy, _ := snap.Enemy(step.TargetID)
		if world.Distance(led.pos, enemy.Position) > spec.MaxRange {
			return ErrTargetOutOfRange
		}
	}
	return nil
}
