package classical

import (
	"container/heap"
	"strconv"

	"strategos/internal/domain/tactics"
	"strategos/internal/domain/world"
)

type Config struct {
	NodeBudget   int
	MaxPlanSteps int
}

func DefaultConfig() Config {
	return Config{
		NodeBudget:   tactics.DefaultNodeBudget,
		MaxPlanSteps: tactics.MaxPlanSteps,
	}
}

// Planner is the always-available tier: a bounded best-first search over the
// action vocabulary. It is total and deterministic — equal snapshots produce
// bit-identical plans — and it never blocks, never errors, and never returns
// an empty plan.
type Planner struct {
	cfg   Config
	vocab map[tactics.ActionKind]tactics.KindSpec
}

func New(cfg Config) Planner {
	def := DefaultConfig()
	if cfg.NodeBudget <= 0 {
		cfg.NodeBudget = def.NodeBudget
	}
	if cfg.MaxPlanSteps <= 0 {
		cfg.MaxPlanSteps = def.MaxPlanSteps
	}
	return Planner{cfg: cfg, vocab: tactics.Vocabulary()}
}

type node struct {
	state searchState
	steps []tactics.ActionStep
	g     float64
	h     float64
	seq   int // insertion order, the final tie-breaker
}

type openList []*node

func (o openList) Len() int { return len(o) }
func (o openList) Less(i, j int) bool {
	fi, fj := o[i].g+o[i].h, o[j].g+o[j].h
	if fi != fj {
		return fi < fj
	}
	return o[i].seq < o[j].seq
}
func (o openList) Swap(i, j int)       { o[i], o[j] = o[j], o[i] }
func (o *openList) Push(x any)         { *o = append(*o, x.(*node)) }
func (o *openList) Pop() any {
	old := *o
	n := old[len(old)-1]
	*o = old[:len(old)-1]
	return n
}

// Plan derives a goal from the snapshot objective and searches up to the
// node budget. On exhaustion it returns the best partial plan — the node
// that moved the heuristic strictly below the start's — or, when nothing
// improved, the single-step safe default.
func (p Planner) Plan(snap world.Snapshot) tactics.PlanIntent {
	g := parseGoal(snap)
	start := initialState(snap)
	h0 := g.heuristic(start, snap)

	seq := 0
	open := &openList{}
	heap.Init(open)
	heap.Push(open, &node{state: start, h: h0, seq: seq})
	closed := map[string]bool{start.key(): true}

	var partial *node
	expanded := 0

	for open.Len() > 0 && expanded < p.cfg.NodeBudget {
		cur := heap.Pop(open).(*node)
		expanded++

		if g.satisfied(cur.state, snap) && len(cur.steps) > 0 {
			return p.intent(snap, cur.steps)
		}
		if cur.h < h0 && (partial == nil || betterPartial(cur, partial)) {
			partial = cur
		}
		if len(cur.steps) >= p.cfg.MaxPlanSteps {
			continue
		}

		for _, succ := range p.successors(cur, snap) {
			key := succ.state.key()
			if closed[key] {
				continue
			}
			closed[key] = true
			seq++
			succ.seq = seq
			succ.h = g.heuristic(succ.state, snap)
			heap.Push(open, succ)
		}
	}

	if partial != nil && len(partial.steps) > 0 {
		return p.intent(snap, partial.steps)
	}
	return tactics.SafeDefault(planID(snap, "fallback"))
}

func betterPartial(a, b *node) bool {
	if a.h != b.h {
		return a.h < b.h
	}
	if a.g != b.g {
		return a.g < b.g
	}
	return a.seq < b.seq
}

// successors generates children in the fixed vocabulary order; within a
// kind, candidates follow snapshot slice order. No map is ever ranged here.
// call_support is deliberately absent: the search has no model of off-map
// support effects, so expanding it would only burn node budget. The
// validator still accepts it from generative candidates.
func (p Planner) successors(cur *node, snap world.Snapshot) []*node {
	out := make([]*node, 0, 8)
	for _, kind := range tactics.VocabularyOrder {
		switch kind {
		case tactics.ActionMoveTo:
			out = append(out, p.moveSuccessors(cur, snap)...)
		case tactics.ActionAttack:
			out = append(out, p.attackSuccessors(cur, snap)...)
		case tactics.ActionMelee:
			out = append(out, p.meleeSuccessors(cur, snap)...)
		case tactics.ActionTakeCover:
			if n := p.takeCoverSuccessor(cur); n != nil {
				out = append(out, n)
			}
		case tactics.ActionUseItem:
			if n := p.useItemSuccessor(cur); n != nil {
				out = append(out, n)
			}
		case tactics.ActionWait:
			out = append(out, p.waitSuccessor(cur))
		}
	}
	return out
}

func (p Planner) moveSuccessors(cur *node, snap world.Snapshot) []*node {
	var out []*node
	for _, next := range [4]world.Position{
		{X: cur.state.pos.X, Y: cur.state.pos.Y - 1},
		{X: cur.state.pos.X + 1, Y: cur.state.pos.Y},
		{X: cur.state.pos.X, Y: cur.state.pos.Y + 1},
		{X: cur.state.pos.X - 1, Y: cur.state.pos.Y},
	} {
		if !snap.Bounds.Contains(next) || snap.Blocked(next) {
			continue
		}
		s := cur.state.clone()
		s.pos = next
		s.inCover = false
		s.elapsed++
		pos := next
		out = append(out, p.child(cur, s, 1, tactics.ActionStep{Kind: tactics.ActionMoveTo, Pos: &pos}))
	}
	return out
}

func (p Planner) attackSuccessors(cur *node, snap world.Snapshot) []*node {
	spec := p.vocab[tactics.ActionAttack]
	if cur.state.ammo < spec.AmmoCost {
		return nil
	}
	if snap.Me.CooldownTicks(spec.CooldownKey) > 0 || !cur.state.ready(spec.CooldownKey) {
		return nil
	}
	var out []*node
	for i, hp := range cur.state.enemyHP {
		if hp <= 0 {
			continue
		}
		enemy := snap.Enemies[i]
		if world.Distance(cur.state.pos, enemy.Position) > spec.MaxRange {
			continue
		}
		if !world.LineOfSight(snap, cur.state.pos, enemy.Position) {
			continue
		}
		s := cur.state.clone()
		s.enemyHP[i] -= tactics.AttackDamage
		s.ammo -= spec.AmmoCost
		s.nextReady[spec.CooldownKey] = s.elapsed + tactics.AttackCooldownTicks
		s.elapsed++
		out = append(out, p.child(cur, s, 1, tactics.ActionStep{Kind: tactics.ActionAttack, TargetID: enemy.ID}))
	}
	return out
}

func (p Planner) meleeSuccessors(cur *node, snap world.Snapshot) []*node {
	spec := p.vocab[tactics.ActionMelee]
	if snap.Me.CooldownTicks(spec.CooldownKey) > 0 || !cur.state.ready(spec.CooldownKey) {
		return nil
	}
	var out []*node
	for i, hp := range cur.state.enemyHP {
		if hp <= 0 {
			continue
		}
		enemy := snap.Enemies[i]
		if world.Distance(cur.state.pos, enemy.Position) > spec.MaxRange {
			continue
		}
		s := cur.state.clone()
		s.enemyHP[i] -= tactics.MeleeDamage
		s.nextReady[spec.CooldownKey] = s.elapsed + tactics.MeleeCooldownTicks
		s.elapsed++
		out = append(out, p.child(cur, s, 1, tactics.ActionStep{Kind: tactics.ActionMelee, TargetID: enemy.ID}))
	}
	return out
}

func (p Planner) takeCoverSuccessor(cur *node) *node {
	if cur.state.inCover {
		return nil
	}
	s := cur.state.clone()
	s.inCover = true
	s.elapsed++
	pos := s.pos
	return p.child(cur, s, 1, tactics.ActionStep{Kind: tactics.ActionTakeCover, Pos: &pos})
}

func (p Planner) useItemSuccessor(cur *node) *node {
	if cur.state.items["medkit"] <= 0 || cur.state.hp > tactics.DefaultCriticalHPThreshold {
		return nil
	}
	s := cur.state.clone()
	s.items["medkit"]--
	s.hp += tactics.MedkitHeal
	s.elapsed++
	return p.child(cur, s, 1, tactics.ActionStep{Kind: tactics.ActionUseItem, Item: "medkit"})
}

func (p Planner) waitSuccessor(cur *node) *node {
	s := cur.state.clone()
	s.elapsed++
	return p.child(cur, s, 1, tactics.ActionStep{Kind: tactics.ActionWait, DurationTicks: tactics.SafeDefaultWaitTicks})
}

func (p Planner) child(cur *node, s searchState, cost float64, step tactics.ActionStep) *node {
	steps := make([]tactics.ActionStep, len(cur.steps)+1)
	copy(steps, cur.steps)
	steps[len(cur.steps)] = step
	return &node{state: s, steps: steps, g: cur.g + cost}
}

func (p Planner) intent(snap world.Snapshot, steps []tactics.ActionStep) tactics.PlanIntent {
	return tactics.PlanIntent{
		PlanID:     planID(snap, "classical"),
		Provenance: tactics.ProvenanceClassical,
		Steps:      steps,
	}
}

// planID is derived, not random: determinism requires equal snapshots to
// yield byte-identical plans.
func planID(snap world.Snapshot, tier string) string {
	return tier + "-" + snap.AgentID + "-" + strconv.FormatInt(snap.Tick, 10)
}
