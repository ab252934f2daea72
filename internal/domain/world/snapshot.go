package world

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Rect struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

func (r Rect) Contains(p Position) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

type CoverKind string

const (
	CoverNone    CoverKind = "none"
	CoverPartial CoverKind = "partial"
	CoverFull    CoverKind = "full"
)

type AgentState struct {
	Position  Position       `json:"position"`
	HP        int            `json:"hp"`
	Ammo      int            `json:"ammo"`
	Morale    float64        `json:"morale"`
	Cooldowns map[string]int `json:"cooldowns,omitempty"`
	Items     map[string]int `json:"items,omitempty"`
}

// CooldownTicks returns the remaining cooldown for a key, zero when absent.
func (a AgentState) CooldownTicks(key string) int {
	if a.Cooldowns == nil {
		return 0
	}
	return a.Cooldowns[key]
}

func (a AgentState) ItemCount(item string) int {
	if a.Items == nil {
		return 0
	}
	return a.Items[item]
}

type EnemyState struct {
	ID       string    `json:"id"`
	Position Position  `json:"position"`
	HP       int       `json:"hp"`
	Cover    CoverKind `json:"cover,omitempty"`
}

type PointOfInterest struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Position Position `json:"position"`
}

// Snapshot is the complete view the planner is permitted to see for one
// agent-tick. It is a value type: built once by the perception boundary,
// then shared read-only across the synchronous and asynchronous planning
// paths of that tick.
type Snapshot struct {
	Tick      int64             `json:"tick"`
	AgentID   string            `json:"agent_id"`
	Me        AgentState        `json:"me"`
	Enemies   []EnemyState      `json:"enemies,omitempty"`
	POIs      []PointOfInterest `json:"pois,omitempty"`
	Obstacles []Position        `json:"obstacles,omitempty"`
	Bounds    Rect              `json:"bounds"`
	Objective string            `json:"objective,omitempty"`
}

func (s Snapshot) Enemy(id string) (EnemyState, bool) {
	for _, e := range s.Enemies {
		if e.ID == id {
			return e, true
		}
	}
	return EnemyState{}, false
}

func (s Snapshot) POI(id string) (PointOfInterest, bool) {
	for _, p := range s.POIs {
		if p.ID == id {
			return p, true
		}
	}
	return PointOfInterest{}, false
}

func (s Snapshot) Blocked(p Position) bool {
	for _, o := range s.Obstacles {
		if o == p {
			return true
		}
	}
	return false
}
