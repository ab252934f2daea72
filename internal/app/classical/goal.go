package classical

import (
	"strings"

	"strategos/internal/domain/tactics"
	"strategos/internal/domain/world"
)

type goalKind int

const (
	goalSurvive goalKind = iota
	goalEliminate
	goalReach
	goalHold
)

const (
	ObjectiveEliminate = "eliminate_hostiles"
	ObjectiveHold      = "hold_position"
	objectiveReachPfx  = "reach:"
)

type goal struct {
	kind   goalKind
	target world.Position // reach goal only
}

// parseGoal maps the snapshot's symbolic objective onto a goal test. An
// unknown or absent objective degrades to the survival posture rather than
// failing the tick.
func parseGoal(snap world.Snapshot) goal {
	obj := strings.TrimSpace(snap.Objective)
	switch {
	case obj == ObjectiveEliminate:
		return goal{kind: goalEliminate}
	case obj == ObjectiveHold:
		return goal{kind: goalHold}
	case strings.HasPrefix(obj, objectiveReachPfx):
		id := strings.TrimPrefix(obj, objectiveReachPfx)
		if poi, ok := snap.POI(id); ok {
			return goal{kind: goalReach, target: poi.Position}
		}
		return goal{kind: goalSurvive}
	default:
		return goal{kind: goalSurvive}
	}
}

func (g goal) satisfied(s searchState, snap world.Snapshot) bool {
	switch g.kind {
	case goalEliminate:
		return s.livingEnemies() == 0
	case goalReach:
		return s.pos == g.target
	case goalHold:
		return s.inCover
	default:
		return s.inCover || !anyEnemyInRange(s, snap, tactics.AttackRange)
	}
}

// heuristic must never overstate progress: partial-plan selection compares
// raw h values, so a node only counts as progress when h strictly drops.
func (g goal) heuristic(s searchState, snap world.Snapshot) float64 {
	switch g.kind {
	case goalEliminate:
		h := 0.0
		for _, hp := range s.enemyHP {
			if hp > 0 {
				h += float64((hp + tactics.MeleeDamage - 1) / tactics.MeleeDamage)
			}
		}
		if idx, ok := s.nearestLivingEnemy(snap); ok {
			d := world.Distance(s.pos, snap.Enemies[idx].Position)
			if d > tactics.AttackRange {
				h += float64(d - tactics.AttackRange)
			}
		}
		return h
	case goalReach:
		return float64(world.Distance(s.pos, g.target))
	case goalHold:
		if s.inCover {
			return 0
		}
		return 1
	default:
		h := float64(countEnemiesInRange(s, snap, tactics.AttackRange))
		if s.hp <= tactics.DefaultCriticalHPThreshold && s.items["medkit"] > 0 {
			h++
		}
		return h
	}
}

func anyEnemyInRange(s searchState, snap world.Snapshot, r int) bool {
	return countEnemiesInRange(s, snap, r) > 0
}

func countEnemiesInRange(s searchState, snap world.Snapshot, r int) int {
	n := 0
	for i, hp := range s.enemyHP {
		if hp > 0 && world.Distance(s.pos, snap.Enemies[i].Position) <= r {
			n++
		}
	}
	return n
}
