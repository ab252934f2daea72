package generative

import (
	"encoding/json"
	"strconv"
	"strings"

	"strategos/internal/domain/tactics"
	"strategos/internal/domain/world"
)

const promptHeader = `You are a tactical planner for a grid-based combat agent.
Reply with a single JSON object and nothing else:
{"plan_id":"<id>","steps":[{"kind":"...","pos":{"x":0,"y":0},"target_id":"...","item":"...","duration_ticks":0}]}
Allowed kinds: move_to take_cover (need pos), attack melee (need target_id),
use_item (need item), call_support, wait. At most %MAX% steps. Moves are one
cell per step. Every step is checked against the world; an invalid step
discards the whole plan, so prefer short plans you are sure of.
Situation:
`

type promptAgent struct {
	Pos       world.Position `json:"pos"`
	HP        int            `json:"hp"`
	Ammo      int            `json:"ammo"`
	Morale    float64        `json:"morale"`
	Cooldowns map[string]int `json:"cooldowns,omitempty"`
	Items     map[string]int `json:"items,omitempty"`
}

type promptEnemy struct {
	ID    string         `json:"id"`
	Pos   world.Position `json:"pos"`
	HP    int            `json:"hp"`
	Cover string         `json:"cover,omitempty"`
}

type promptPOI struct {
	ID   string         `json:"id"`
	Kind string         `json:"kind"`
	Pos  world.Position `json:"pos"`
}

type promptSituation struct {
	Tick      int64            `json:"tick"`
	Objective string           `json:"objective,omitempty"`
	Me        promptAgent      `json:"me"`
	Enemies   []promptEnemy    `json:"enemies,omitempty"`
	POIs      []promptPOI      `json:"pois,omitempty"`
	Obstacles []world.Position `json:"obstacles,omitempty"`
	Bounds    world.Rect       `json:"bounds"`
}

// BuildPrompt renders the snapshot into a compact task description. The
// payload is plain JSON so any chat-completion backend can consume it.
func BuildPrompt(snap world.Snapshot) string {
	sit := promptSituation{
		Tick:      snap.Tick,
		Objective: snap.Objective,
		Me: promptAgent{
			Pos:       snap.Me.Position,
			HP:        snap.Me.HP,
			Ammo:      snap.Me.Ammo,
			Morale:    snap.Me.Morale,
			Cooldowns: snap.Me.Cooldowns,
			Items:     snap.Me.Items,
		},
		Obstacles: snap.Obstacles,
		Bounds:    snap.Bounds,
	}
	for _, e := range snap.Enemies {
		sit.Enemies = append(sit.Enemies, promptEnemy{
			ID: e.ID, Pos: e.Position, HP: e.HP, Cover: string(e.Cover),
		})
	}
	for _, p := range snap.POIs {
		sit.POIs = append(sit.POIs, promptPOI{ID: p.ID, Kind: p.Kind, Pos: p.Position})
	}

	payload, err := json.Marshal(sit)
	if err != nil {
		// Snapshot types contain nothing unmarshalable; keep the prompt
		// usable regardless.
		payload = []byte("{}")
	}

	header := strings.Replace(promptHeader, "%MAX%", strconv.Itoa(tactics.MaxPlanSteps), 1)
	return header + string(payload)
}
