package generative

import (
	"errors"
	"testing"

	"strategos/internal/domain/tactics"
)

func TestParseCandidate_PlainJSON(t *testing.T) {
	raw := []byte(`{"plan_id":"llm-1","steps":[
		{"kind":"move_to","pos":{"x":3,"y":4}},
		{"kind":"attack","target_id":"e1"},
		{"kind":"wait","duration_ticks":2}
	]}`)

	plan, err := ParseCandidate(raw)
	if err != nil {
		t.Fatalf("ParseCandidate error: %v", err)
	}
	if plan.PlanID != "llm-1" {
		t.Fatalf("expected plan id llm-1, got %s", plan.PlanID)
	}
	if plan.Provenance != tactics.ProvenanceGenerative {
		t.Fatalf("expected generative provenance")
	}
	if len(plan.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(plan.Steps))
	}
	if plan.Steps[0].Pos == nil || plan.Steps[0].Pos.X != 3 || plan.Steps[0].Pos.Y != 4 {
		t.Fatalf("expected move pos (3,4), got %+v", plan.Steps[0].Pos)
	}
	if plan.Steps[2].DurationTicks != 2 {
		t.Fatalf("expected wait duration 2")
	}
}

func TestParseCandidate_JSONWrappedInProse(t *testing.T) {
	raw := []byte("Here is my plan:\n```json\n{\"steps\":[{\"kind\":\"wait\"}]}\n```\nGood luck!")

	plan, err := ParseCandidate(raw)
	if err != nil {
		t.Fatalf("ParseCandidate error: %v", err)
	}
	if len(plan.Steps) != 1 || plan.Steps[0].Kind != tactics.ActionWait {
		t.Fatalf("expected single wait step, got %+v", plan.Steps)
	}
	if plan.PlanID == "" {
		t.Fatalf("expected a generated plan id when none is given")
	}
}

func TestParseCandidate_BracesInsideStrings(t *testing.T) {
	raw := []byte(`{"plan_id":"a{b}c","steps":[{"kind":"wait"}]}`)
	plan, err := ParseCandidate(raw)
	if err != nil {
		t.Fatalf("ParseCandidate error: %v", err)
	}
	if plan.PlanID != "a{b}c" {
		t.Fatalf("expected braces in strings to survive, got %s", plan.PlanID)
	}
}

func TestParseCandidate_Rejections(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"no json", "I cannot help with that."},
		{"truncated", `{"steps":[{"kind":"wait"}`},
		{"missing steps", `{"plan_id":"x"}`},
		{"steps not array", `{"steps":"wait"}`},
		{"empty steps", `{"steps":[]}`},
		{"unknown kind", `{"steps":[{"kind":"self_destruct"}]}`},
	}
	for _, c := range cases {
		_, err := ParseCandidate([]byte(c.raw))
		if !errors.Is(err, ErrBadCandidate) {
			t.Fatalf("%s: expected ErrBadCandidate, got %v", c.name, err)
		}
	}
}
