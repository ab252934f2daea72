package generative

import (
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"strategos/internal/domain/tactics"
	"strategos/internal/domain/world"
)

// ParseCandidate reads a plan out of raw backend output. Models wrap JSON
// in prose and code fences, so the parser extracts the outermost object
// before reading it. Only shape is checked here; semantic validation is the
// validator's job.
func ParseCandidate(raw []byte) (tactics.PlanIntent, error) {
	doc := extractObject(string(raw))
	if doc == "" {
		return tactics.PlanIntent{}, &BadCandidateError{Reason: "no JSON object in output"}
	}
	if !gjson.Valid(doc) {
		return tactics.PlanIntent{}, &BadCandidateError{Reason: "invalid JSON"}
	}

	steps := gjson.Get(doc, "steps")
	if !steps.IsArray() {
		return tactics.PlanIntent{}, &BadCandidateError{Reason: "missing steps array"}
	}

	plan := tactics.PlanIntent{
		PlanID:     gjson.Get(doc, "plan_id").String(),
		Provenance: tactics.ProvenanceGenerative,
	}
	if plan.PlanID == "" {
		plan.PlanID = uuid.NewString()
	}

	var parseErr error
	steps.ForEach(func(_, step gjson.Result) bool {
		kind := tactics.ActionKind(step.Get("kind").String())
		if !tactics.IsKnownKind(kind) {
			parseErr = &BadCandidateError{Reason: "unknown step kind " + string(kind)}
			return false
		}
		s := tactics.ActionStep{
			Kind:          kind,
			TargetID:      step.Get("target_id").String(),
			Item:          step.Get("item").String(),
			DurationTicks: int(step.Get("duration_ticks").Int()),
		}
		if pos := step.Get("pos"); pos.Exists() {
			p := world.Position{
				X: int(pos.Get("x").Int()),
				Y: int(pos.Get("y").Int()),
			}
			s.Pos = &p
		}
		plan.Steps = append(plan.Steps, s)
		return true
	})
	if parseErr != nil {
		return tactics.PlanIntent{}, parseErr
	}
	if len(plan.Steps) == 0 {
		return tactics.PlanIntent{}, &BadCandidateError{Reason: "empty steps array"}
	}
	return plan, nil
}

// extractObject returns the first balanced top-level JSON object in s,
// ignoring braces inside strings.
func extractObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
