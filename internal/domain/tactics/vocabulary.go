package tactics

// KindSpec describes the static contract of one action kind: which params it
// requires, what it consumes, and which cooldown key gates it. The validator
// and the classical planner both read from this table so the two can never
// disagree about preconditions.
type KindSpec struct {
	Kind         ActionKind
	CooldownKey  string
	AmmoCost     int
	NeedsTarget  bool
	NeedsPos     bool
	NeedsItem    bool
	MaxRange     int // 0 means unlimited
	NeedsLOS     bool
	DefaultTicks int // repair default for DurationTicks when required and absent
}

// VocabularyOrder is the fixed, explicit ordering of action kinds. The
// classical planner expands successors in this order and ties never fall
// back to map iteration, which keeps search output bit-stable.
var VocabularyOrder = []ActionKind{
	ActionMoveTo,
	ActionAttack,
	ActionMelee,
	ActionTakeCover,
	ActionUseItem,
	ActionCallSupport,
	ActionWait,
}

func Vocabulary() map[ActionKind]KindSpec {
	return map[ActionKind]KindSpec{
		ActionMoveTo: {Kind: ActionMoveTo, NeedsPos: true},
		ActionAttack: {
			Kind:        ActionAttack,
			CooldownKey: "attack",
			AmmoCost:    1,
			NeedsTarget: true,
			MaxRange:    AttackRange,
			NeedsLOS:    true,
		},
		ActionMelee: {
			Kind:        ActionMelee,
			CooldownKey: "melee",
			NeedsTarget: true,
			MaxRange:    MeleeRange,
		},
		ActionTakeCover: {Kind: ActionTakeCover, NeedsPos: true},
		ActionUseItem:   {Kind: ActionUseItem, NeedsItem: true},
		ActionCallSupport: {
			Kind:         ActionCallSupport,
			CooldownKey:  "call_support",
			DefaultTicks: SupportArrivalTicks,
		},
		ActionWait: {Kind: ActionWait, DefaultTicks: SafeDefaultWaitTicks},
	}
}

func IsKnownKind(k ActionKind) bool {
	for _, kind := range VocabularyOrder {
		if k == kind {
			return true
		}
	}
	return false
}
