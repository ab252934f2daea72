package arbiter

import (
	"context"
	"sync"
	"testing"
	"time"

	"strategos/internal/app/classical"
	"strategos/internal/app/fingerprint"
	"strategos/internal/app/generative"
	"strategos/internal/app/plancache"
	"strategos/internal/app/ports"
	"strategos/internal/app/validate"
	"strategos/internal/domain/tactics"
	"strategos/internal/domain/world"
)

type fakeMetrics struct {
	mu          sync.Mutex
	cacheHit    int
	cacheMiss   int
	cacheCor    int
	commits     map[tactics.Provenance]int
	rejected    map[tactics.Provenance]int
	genOutcomes []bool
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		commits:  map[tactics.Provenance]int{},
		rejected: map[tactics.Provenance]int{},
	}
}

func (m *fakeMetrics) RecordCacheHit()        { m.mu.Lock(); defer m.mu.Unlock(); m.cacheHit++ }
func (m *fakeMetrics) RecordCacheMiss()       { m.mu.Lock(); defer m.mu.Unlock(); m.cacheMiss++ }
func (m *fakeMetrics) RecordCacheCorruption() { m.mu.Lock(); defer m.mu.Unlock(); m.cacheCor++ }
func (m *fakeMetrics) RecordCommit(p tactics.Provenance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commits[p]++
}
func (m *fakeMetrics) RecordValidationRejected(p tactics.Provenance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[p]++
}
func (m *fakeMetrics) RecordGenerativeOutcome(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.genOutcomes = append(m.genOutcomes, ok)
}
func (m *fakeMetrics) RecordBreakerTransition(ports.BreakerState) {}

type fakeArchive struct {
	mu      sync.Mutex
	records []ports.PlanExecutionRecord
}

func (a *fakeArchive) Append(_ context.Context, r ports.PlanExecutionRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, r)
	return nil
}

func (a *fakeArchive) ListByAgentID(_ context.Context, agentID string, limit int) ([]ports.PlanExecutionRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []ports.PlanExecutionRecord{}
	for _, r := range a.records {
		if r.AgentID == agentID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeGenBackend struct {
	raw     []byte
	release chan struct{}
}

func (f *fakeGenBackend) Complete(ctx context.Context, _ string) ([]byte, error) {
	if f.release != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-f.release:
		}
	}
	return f.raw, nil
}

func combatSnapshot() world.Snapshot {
	return world.Snapshot{
		Tick:    10,
		AgentID: "agent-1",
		Me: world.AgentState{
			Position: world.Position{X: 2, Y: 2},
			HP:       80,
			Ammo:     6,
		},
		Enemies: []world.EnemyState{
			{ID: "e1", Position: world.Position{X: 6, Y: 2}, HP: 20},
		},
		Bounds:    world.Rect{MinX: 0, MinY: 0, MaxX: 15, MaxY: 15},
		Objective: "eliminate_hostiles",
	}
}

func newArbiter(gen *generative.Adapter, metrics *fakeMetrics, archive *fakeArchive) *Arbiter {
	return New(
		Config{RequestCooldownTicks: 1},
		classical.New(classical.Config{}),
		validate.New(validate.Config{}),
		fingerprint.New(fingerprint.Config{}),
		plancache.New(plancache.Config{}),
		gen,
		archive,
		metrics,
	)
}

func TestPlan_AlwaysCommitsClassicalWithoutBackend(t *testing.T) {
	metrics := newFakeMetrics()
	archive := &fakeArchive{}
	arb := newArbiter(nil, metrics, archive)

	d := arb.Plan(context.Background(), combatSnapshot())
	if len(d.Plan.Steps) == 0 {
		t.Fatalf("expected a committed plan")
	}
	if d.Plan.Provenance != tactics.ProvenanceClassical {
		t.Fatalf("expected classical provenance, got %s", d.Plan.Provenance)
	}
	if d.ResultCode != tactics.ResultOK {
		t.Fatalf("expected OK, got %s", d.ResultCode)
	}
	if d.Epoch != 1 {
		t.Fatalf("expected first epoch 1, got %d", d.Epoch)
	}
	if metrics.commits[tactics.ProvenanceClassical] != 1 {
		t.Fatalf("expected one classical commit recorded")
	}
	if len(archive.records) != 1 || archive.records[0].Tick != 10 {
		t.Fatalf("expected archived record for tick 10, got %+v", archive.records)
	}
}

func TestPlan_SecondTickServedFromCache(t *testing.T) {
	metrics := newFakeMetrics()
	arb := newArbiter(nil, metrics, &fakeArchive{})

	first := arb.Plan(context.Background(), combatSnapshot())
	snap := combatSnapshot()
	snap.Tick = 11
	second := arb.Plan(context.Background(), snap)

	if second.Plan.Provenance != tactics.ProvenanceCache {
		t.Fatalf("expected cache provenance, got %s", second.Plan.Provenance)
	}
	if second.Epoch != first.Epoch {
		t.Fatalf("expected unchanged epoch, got %d vs %d", second.Epoch, first.Epoch)
	}
	if metrics.cacheHit != 1 || metrics.cacheMiss != 1 {
		t.Fatalf("expected 1 hit / 1 miss, got %d / %d", metrics.cacheHit, metrics.cacheMiss)
	}
}

func TestPlan_CorruptCacheEntryEvictedAndReplanned(t *testing.T) {
	metrics := newFakeMetrics()
	cache := plancache.New(plancache.Config{})
	quantizer := fingerprint.New(fingerprint.Config{})
	arb := New(
		Config{RequestCooldownTicks: 1},
		classical.New(classical.Config{}),
		validate.New(validate.Config{}),
		quantizer,
		cache,
		nil,
		&fakeArchive{},
		metrics,
	)

	snap := combatSnapshot()
	cache.Put(quantizer.Fingerprint(snap), snap.Tick, tactics.PlanIntent{
		PlanID:     "stale",
		Provenance: tactics.ProvenanceClassical,
		Steps:      []tactics.ActionStep{{Kind: tactics.ActionAttack, TargetID: "ghost"}},
	})

	d := arb.Plan(context.Background(), snap)
	if d.Plan.Provenance != tactics.ProvenanceClassical {
		t.Fatalf("expected classical replan, got %s", d.Plan.Provenance)
	}
	if metrics.cacheCor != 1 {
		t.Fatalf("expected one cache corruption, got %d", metrics.cacheCor)
	}
}

func TestPlan_DegradedWhenNothingIsPossible(t *testing.T) {
	metrics := newFakeMetrics()
	arb := newArbiter(nil, metrics, &fakeArchive{})

	snap := combatSnapshot()
	snap.Me.Ammo = 0
	snap.Me.Cooldowns = map[string]int{"attack": 10, "melee": 10, "call_support": 10}
	snap.Enemies = []world.EnemyState{{ID: "e1", Position: world.Position{X: 3, Y: 2}, HP: 20}}

	d := arb.Plan(context.Background(), snap)
	if d.Plan.Provenance != tactics.ProvenanceFallback {
		t.Fatalf("expected fallback provenance, got %s", d.Plan.Provenance)
	}
	if d.ResultCode != tactics.ResultDegraded {
		t.Fatalf("expected DEGRADED, got %s", d.ResultCode)
	}
	if len(d.Plan.Steps) != 1 || d.Plan.Steps[0].Kind != tactics.ActionWait {
		t.Fatalf("expected single wait, got %+v", d.Plan.Steps)
	}
}

func TestPlan_CommitsGenerativeResultForCurrentEpoch(t *testing.T) {
	backend := &fakeGenBackend{raw: []byte(`{"plan_id":"llm-1","steps":[{"kind":"wait","duration_ticks":1}]}`)}
	gen := generative.New(generative.Config{Workers: 1, Deadline: 5 * time.Second}, backend, nil)
	arb := newArbiter(gen, newFakeMetrics(), &fakeArchive{})

	snap := combatSnapshot()
	if d := arb.Plan(context.Background(), snap); d.Plan.Provenance == tactics.ProvenanceGenerative {
		t.Fatalf("expected the first tick to commit synchronously")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		snap.Tick++
		d := arb.Plan(context.Background(), snap)
		if d.Plan.Provenance == tactics.ProvenanceGenerative {
			if d.Plan.PlanID != "llm-1" {
				t.Fatalf("expected llm-1 plan, got %s", d.Plan.PlanID)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("generative result never committed")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestPlan_StaleEpochResultDiscarded(t *testing.T) {
	backend := &fakeGenBackend{raw: []byte(`{"plan_id":"llm-stale","steps":[{"kind":"wait","duration_ticks":1}]}`)}
	gen := generative.New(generative.Config{Workers: 1, Deadline: 5 * time.Second}, backend, nil)
	metrics := newFakeMetrics()
	arb := newArbiter(gen, metrics, &fakeArchive{})

	first := arb.Plan(context.Background(), combatSnapshot())
	// Let the epoch-1 request finish before the situation changes.
	time.Sleep(100 * time.Millisecond)

	moved := combatSnapshot()
	moved.Tick = 11
	moved.Me.Position = world.Position{X: 12, Y: 12}
	d := arb.Plan(context.Background(), moved)

	if d.Epoch != first.Epoch+1 {
		t.Fatalf("expected epoch bump, got %d after %d", d.Epoch, first.Epoch)
	}
	if d.Plan.Provenance == tactics.ProvenanceGenerative {
		t.Fatalf("expected the stale generative result to be discarded")
	}
	if d.Plan.PlanID == "llm-stale" {
		t.Fatalf("stale plan leaked into the commit")
	}
}

func TestPlan_InvalidGenerativeCandidateFallsThrough(t *testing.T) {
	// Syntactically fine, semantically impossible: the target does not
	// exist in the snapshot.
	backend := &fakeGenBackend{raw: []byte(`{"steps":[{"kind":"attack","target_id":"ghost"}]}`)}
	gen := generative.New(generative.Config{Workers: 1, Deadline: 5 * time.Second}, backend, nil)
	metrics := newFakeMetrics()
	arb := newArbiter(gen, metrics, &fakeArchive{})

	snap := combatSnapshot()
	arb.Plan(context.Background(), snap)
	time.Sleep(100 * time.Millisecond)

	snap.Tick++
	d := arb.Plan(context.Background(), snap)
	if d.Plan.Provenance == tactics.ProvenanceGenerative {
		t.Fatalf("expected invalid candidate to be rejected")
	}
	if metrics.rejected[tactics.ProvenanceGenerative] != 1 {
		t.Fatalf("expected one generative rejection, got %d", metrics.rejected[tactics.ProvenanceGenerative])
	}
}

func TestPlan_SessionsAreIndependentPerAgent(t *testing.T) {
	arb := newArbiter(nil, newFakeMetrics(), &fakeArchive{})

	a := combatSnapshot()
	b := combatSnapshot()
	b.AgentID = "agent-2"
	b.Me.Position = world.Position{X: 12, Y: 12}

	da := arb.Plan(context.Background(), a)
	db := arb.Plan(context.Background(), b)
	if da.Epoch != 1 || db.Epoch != 1 {
		t.Fatalf("expected fresh epochs per agent, got %d and %d", da.Epoch, db.Epoch)
	}
}

func TestPlan_CacheHitSurvivesEnemyRelabel(t *testing.T) {
	metrics := newFakeMetrics()
	arb := newArbiter(nil, metrics, &fakeArchive{})

	first := arb.Plan(context.Background(), combatSnapshot())
	attacks := 0
	for _, s := range first.Plan.Steps {
		if s.Kind == tactics.ActionAttack {
			attacks++
		}
	}
	if attacks == 0 {
		t.Fatalf("expected the committed plan to attack, got %+v", first.Plan.Steps)
	}

	// Same situation, the only enemy relabeled: the fingerprint is
	// identity-free, so the cached plan must serve with its targets
	// retargeted, not be evicted as corruption.
	relabeled := combatSnapshot()
	relabeled.Tick = 11
	relabeled.Enemies[0].ID = "e2"
	second := arb.Plan(context.Background(), relabeled)

	if second.Fingerprint != first.Fingerprint {
		t.Fatalf("expected equal fingerprints, got %x vs %x", second.Fingerprint, first.Fingerprint)
	}
	if second.Plan.Provenance != tactics.ProvenanceCache {
		t.Fatalf("expected cache provenance, got %s", second.Plan.Provenance)
	}
	for _, s := range second.Plan.Steps {
		if s.Kind == tactics.ActionAttack && s.TargetID != "e2" {
			t.Fatalf("expected attacks retargeted to e2, got %q", s.TargetID)
		}
	}
	if metrics.cacheCor != 0 {
		t.Fatalf("expected no cache corruption, got %d", metrics.cacheCor)
	}
	if metrics.cacheHit != 1 {
		t.Fatalf("expected one cache hit, got %d", metrics.cacheHit)
	}
}

func TestNew_NilMetricsAndArchiveAreOptional(t *testing.T) {
	arb := New(
		Config{},
		classical.New(classical.Config{}),
		validate.New(validate.Config{}),
		fingerprint.New(fingerprint.Config{}),
		plancache.New(plancache.Config{}),
		nil,
		nil,
		nil,
	)

	d := arb.Plan(context.Background(), combatSnapshot())
	if d.ResultCode != tactics.ResultOK || len(d.Plan.Steps) == 0 {
		t.Fatalf("expected a committed plan, got %+v", d)
	}
}
