package validate

import (
	"strategos/internal/domain/tactics"
	"strategos/internal/domain/world"
)

// ledger tracks the symbolic resource state of the agent as plan steps are
// applied in order. It is the validator's private scratch copy; the snapshot
// itself is never written.
type ledger struct {
	pos       world.Position
	ammo      int
	cooldowns map[string]int
	items     map[string]int
	elapsed   int
}

func newLedger(snap world.Snapshot) *ledger {
	l := &ledger{
		pos:       snap.Me.Position,
		ammo:      snap.Me.Ammo,
		cooldowns: make(map[string]int, len(snap.Me.Cooldowns)),
		items:     make(map[string]int, len(snap.Me.Items)),
	}
	for k, v := range snap.Me.Cooldowns {
		l.cooldowns[k] = v
	}
	for k, v := range snap.Me.Items {
		l.items[k] = v
	}
	return l
}

func (l *ledger) cooldown(key string) int {
	remaining := l.cooldowns[key] - l.elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (l *ledger) item(name string) int { return l.items[name] }

func (l *ledger) apply(step tactics.ActionStep, spec tactics.KindSpec) {
	l.ammo -= spec.AmmoCost
	if spec.NeedsItem {
		l.items[step.Item]--
	}
	switch step.Kind {
	case tactics.ActionMoveTo, tactics.ActionTakeCover:
		l.pos = *step.Pos
	case tactics.ActionAttack:
		l.cooldowns[spec.CooldownKey] = l.elapsed + tactics.AttackCooldownTicks
	case tactics.ActionMelee:
		l.cooldowns[spec.CooldownKey] = l.elapsed + tactics.MeleeCooldownTicks
	case tactics.ActionCallSupport:
		l.cooldowns[spec.CooldownKey] = l.elapsed + tactics.SupportCooldown
	}
	ticks := step.DurationTicks
	if ticks <= 0 {
		ticks = 1
	}
	l.elapsed += ticks
}
