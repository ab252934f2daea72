package arbiter

import (
	"fmt"
	"sort"

	"strategos/internal/app/fingerprint"
	"strategos/internal/domain/tactics"
	"strategos/internal/domain/world"
)

// The fingerprint is identity-free, so a plan cached against enemy "e1" must
// still serve a snapshot where the equivalent enemy is labeled "e2". Before a
// plan enters the cache its concrete target ids are rewritten to symbolic
// tokens built from the same (distance bucket, health band) digest the
// fingerprint uses; on read the tokens are resolved against the live
// snapshot. A token that cannot be resolved is left in place and fails
// re-validation like any other stale reference.

const targetTokenPrefix = "@enemy/"

// targetTokens assigns each living enemy a deterministic symbolic token.
// Enemies sharing a digest are disambiguated by an ordinal over their sorted
// ids; within a digest they are tactically interchangeable, so the ordinal
// only has to be stable, not meaningful.
func (a *Arbiter) targetTokens(snap world.Snapshot) map[string]string {
	byDigest := make(map[fingerprint.EnemyDigest][]string)
	for _, e := range snap.Enemies {
		if e.HP <= 0 {
			continue
		}
		d := a.quantizer.EnemyDigest(snap.Me.Position, e)
		byDigest[d] = append(byDigest[d], e.ID)
	}
	tokens := make(map[string]string, len(snap.Enemies))
	for d, ids := range byDigest {
		sort.Strings(ids)
		for i, id := range ids {
			tokens[id] = fmt.Sprintf("%s%d/%d/%d", targetTokenPrefix, d.Dist, d.Health, i)
		}
	}
	return tokens
}

// symbolizeTargets returns a copy of plan with enemy ids replaced by their
// tokens. Ids not found in the snapshot are kept verbatim.
func (a *Arbiter) symbolizeTargets(plan tactics.PlanIntent, snap world.Snapshot) tactics.PlanIntent {
	return rewriteTargets(plan, a.targetTokens(snap))
}

// resolveTargets returns a copy of plan with tokens mapped back to the live
// snapshot's enemy ids.
func (a *Arbiter) resolveTargets(plan tactics.PlanIntent, snap world.Snapshot) tactics.PlanIntent {
	tokens := a.targetTokens(snap)
	byToken := make(map[string]string, len(tokens))
	for id, token := range tokens {
		byToken[token] = id
	}
	return rewriteTargets(plan, byToken)
}

func rewriteTargets(plan tactics.PlanIntent, mapping map[string]string) tactics.PlanIntent {
	out := plan
	out.Steps = make([]tactics.ActionStep, len(plan.Steps))
	copy(out.Steps, plan.Steps)
	for i := range out.Steps {
		if out.Steps[i].TargetID == "" {
			continue
		}
		if id, ok := mapping[out.Steps[i].TargetID]; ok {
			out.Steps[i].TargetID = id
		}
	}
	return out
}
