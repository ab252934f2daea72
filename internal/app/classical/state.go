package classical

import (
	"sort"
	"strconv"
	"strings"

	"strategos/internal/domain/world"
)

// searchState is the lightweight symbolic state the planner searches over.
// It carries only what action preconditions and goals read; the full
// snapshot stays immutable on the side.
type searchState struct {
	pos     world.Position
	ammo    int
	hp      int
	elapsed int
	inCover bool
	// enemyHP is indexed parallel to the snapshot's enemy list; dead
	// enemies stay in place so indices remain stable.
	enemyHP []int
	// nextReady maps cooldown keys to the elapsed tick at which the
	// ability becomes usable again, for abilities used inside this plan.
	// Abilities already cooling down in the snapshot are unavailable for
	// the whole search horizon: the agent replans every tick, so modeling
	// their decay buys nothing and costs determinism-sensitive branching.
	nextReady map[string]int
	items     map[string]int
}

func initialState(snap world.Snapshot) searchState {
	s := searchState{
		pos:       snap.Me.Position,
		ammo:      snap.Me.Ammo,
		hp:        snap.Me.HP,
		enemyHP:   make([]int, len(snap.Enemies)),
		nextReady: map[string]int{},
		items:     map[string]int{},
	}
	for i, e := range snap.Enemies {
		s.enemyHP[i] = e.HP
	}
	for k, v := range snap.Me.Items {
		s.items[k] = v
	}
	return s
}

func (s searchState) clone() searchState {
	next := s
	next.enemyHP = make([]int, len(s.enemyHP))
	copy(next.enemyHP, s.enemyHP)
	next.nextReady = make(map[string]int, len(s.nextReady))
	for k, v := range s.nextReady {
		next.nextReady[k] = v
	}
	next.items = make(map[string]int, len(s.items))
	for k, v := range s.items {
		next.items[k] = v
	}
	return next
}

func (s searchState) ready(key string) bool {
	return s.elapsed >= s.nextReady[key]
}

// key encodes the state for the closed set. Map contents are emitted in
// sorted key order so the encoding is stable.
func (s searchState) key() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(s.pos.X))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(s.pos.Y))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(s.ammo))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(s.hp))
	b.WriteByte('|')
	if s.inCover {
		b.WriteByte('c')
	}
	b.WriteByte('|')
	for _, hp := range s.enemyHP {
		b.WriteString(strconv.Itoa(hp))
		b.WriteByte(';')
	}
	b.WriteByte('|')
	// Cooldowns are encoded as ticks remaining, not absolute ready ticks,
	// so cooldown-free states merge regardless of plan depth while a wait
	// that burns down a cooldown still produces a fresh state.
	keys := make([]string, 0, len(s.nextReady))
	for k := range s.nextReady {
		if s.nextReady[k] > s.elapsed {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(s.nextReady[k] - s.elapsed))
		b.WriteByte(';')
	}
	b.WriteByte('|')
	items := make([]string, 0, len(s.items))
	for k := range s.items {
		items = append(items, k)
	}
	sort.Strings(items)
	for _, k := range items {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(s.items[k]))
		b.WriteByte(';')
	}
	return b.String()
}

func (s searchState) livingEnemies() int {
	n := 0
	for _, hp := range s.enemyHP {
		if hp > 0 {
			n++
		}
	}
	return n
}

func (s searchState) nearestLivingEnemy(snap world.Snapshot) (int, bool) {
	best := -1
	bestDist := 0
	for i, hp := range s.enemyHP {
		if hp <= 0 {
			continue
		}
		d := world.Distance(s.pos, snap.Enemies[i].Position)
		if best == -1 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, best != -1
}
