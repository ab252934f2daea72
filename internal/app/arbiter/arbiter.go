package arbiter

import (
	"context"
	"sync"
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

type Config struct {
	// RequestCooldownTicks is the minimum tick gap between generative
	// submissions for one agent.
	RequestCooldownTicks int64
}

func DefaultConfig() Config {
	return Config{RequestCooldownTicks: tactics.DefaultGenCooldownTicks}
}

// Decision is what the arbiter commits for one tick: exactly one validated
// plan, always.
type Decision struct {
	Plan        tactics.PlanIntent
	Epoch       uint64
	Fingerprint fingerprint.Situation
	ResultCode  tactics.ResultCode
}

type session struct {
	epoch          uint64
	fingerprint    fingerprint.Situation
	hasFingerprint bool
	pending        *generative.Ticket
	lastSubmitTick int64
	hasSubmitted   bool
}

// Arbiter turns one snapshot into one committed plan per tick. Tier order:
// a finished generative answer for the current epoch, then the plan cache,
// then the classical planner, then the safe default. Every candidate passes
// whole-plan validation against the live snapshot before it can commit.
type Arbiter struct {
	cfg       Config
	planner   classical.Planner
	validator validate.Validator
	quantizer fingerprint.Quantizer
	cache     *plancache.Cache
	gen       *generative.Adapter // nil disables the generative tier
	archive   ports.PlanArchiveRepository
	metrics   ports.PlannerMetrics

	mu       sync.Mutex
	sessions map[string]*session

	Now func() time.Time
}

func New(
	cfg Config,
	planner classical.Planner,
	validator validate.Validator,
	quantizer fingerprint.Quantizer,
	cache *plancache.Cache,
	gen *generative.Adapter,
	archive ports.PlanArchiveRepository,
	metrics ports.PlannerMetrics,
) *Arbiter {
	if cfg.RequestCooldownTicks <= 0 {
		cfg.RequestCooldownTicks = DefaultConfig().RequestCooldownTicks
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Arbiter{
		cfg:       cfg,
		planner:   planner,
		validator: validator,
		quantizer: quantizer,
		cache:     cache,
		gen:       gen,
		archive:   archive,
		metrics:   metrics,
		sessions:  make(map[string]*session),
		Now:       time.Now,
	}
}

// Plan commits exactly one plan for the snapshot's tick. It never returns
// an error and never blocks on the generative backend; the worst case is
// the safe-default wait with a DEGRADED result code.
func (a *Arbiter) Plan(ctx context.Context, snap world.Snapshot) Decision {
	a.mu.Lock()
	defer a.mu.Unlock()

	sess := a.session(snap.AgentID)
	fp := a.quantizer.Fingerprint(snap)
	if !sess.hasFingerprint || fp != sess.fingerprint {
		// The situation changed: any in-flight request answers a stale
		// question for the old epoch.
		sess.epoch++
		sess.fingerprint = fp
		sess.hasFingerprint = true
		if sess.pending != nil {
			sess.pending.Abandon()
		}
	}

	plan, code := a.choose(sess, snap, fp)

	a.maybeSubmit(sess, snap)

	a.metrics.RecordCommit(plan.Provenance)
	a.archiveCommit(ctx, snap, sess.epoch, fp, plan, code)

	return Decision{Plan: plan, Epoch: sess.epoch, Fingerprint: fp, ResultCode: code}
}

func (a *Arbiter) choose(sess *session, snap world.Snapshot, fp fingerprint.Situation) (tactics.PlanIntent, tactics.ResultCode) {
	if plan, ok := a.pollGenerative(sess, snap, fp); ok {
		return plan, tactics.ResultOK
	}
	if plan, ok := a.fromCache(snap, fp); ok {
		return plan, tactics.ResultOK
	}

	candidate := a.planner.Plan(snap)
	if candidate.Provenance == tactics.ProvenanceClassical {
		plan, err := a.validator.Validate(candidate, snap)
		if err == nil {
			a.cache.Put(fp, snap.Tick, a.symbolizeTargets(plan, snap))
			return plan, tactics.ResultOK
		}
		a.metrics.RecordValidationRejected(tactics.ProvenanceClassical)
	}
	// The single wait step needs no validation; it is the one plan that
	// cannot be rejected.
	return tactics.SafeDefault(candidate.PlanID), tactics.ResultDegraded
}

// pollGenerative checks the pending ticket without blocking. A result for a
// superseded epoch is discarded no matter how good it looks.
func (a *Arbiter) pollGenerative(sess *session, snap world.Snapshot, fp fingerprint.Situation) (tactics.PlanIntent, bool) {
	if sess.pending == nil {
		return tactics.PlanIntent{}, false
	}
	res, done := sess.pending.Poll()
	if !done {
		return tactics.PlanIntent{}, false
	}
	sess.pending = nil
	if res.Status != generative.StatusReady || res.Epoch != sess.epoch {
		return tactics.PlanIntent{}, false
	}
	plan, err := a.validator.Validate(res.Candidate, snap)
	if err != nil {
		a.metrics.RecordValidationRejected(tactics.ProvenanceGenerative)
		return tactics.PlanIntent{}, false
	}
	a.cache.Put(fp, snap.Tick, a.symbolizeTargets(plan, snap))
	return plan, true
}

// fromCache serves a previously validated plan with its symbolic targets
// resolved against the live snapshot, then re-validates: a fingerprint
// bucket is coarser than a snapshot, and a stale plan that no longer passes
// is corruption, not a hit.
func (a *Arbiter) fromCache(snap world.Snapshot, fp fingerprint.Situation) (tactics.PlanIntent, bool) {
	cached, ok := a.cache.Get(fp, snap.Tick)
	if !ok {
		a.metrics.RecordCacheMiss()
		return tactics.PlanIntent{}, false
	}
	plan, err := a.validator.Validate(a.resolveTargets(cached, snap), snap)
	if err != nil {
		a.metrics.RecordCacheCorruption()
		a.cache.Evict(fp)
		return tactics.PlanIntent{}, false
	}
	a.metrics.RecordCacheHit()
	plan.Provenance = tactics.ProvenanceCache
	return plan, true
}

func (a *Arbiter) maybeSubmit(sess *session, snap world.Snapshot) {
	if a.gen == nil || sess.pending != nil {
		return
	}
	if sess.hasSubmitted && snap.Tick-sess.lastSubmitTick < a.cfg.RequestCooldownTicks {
		return
	}
	ticket, err := a.gen.Submit(snap, sess.epoch)
	if err != nil {
		// Busy or circuit open; the classical tier carried the tick.
		return
	}
	sess.pending = ticket
	sess.lastSubmitTick = snap.Tick
	sess.hasSubmitted = true
}

func (a *Arbiter) archiveCommit(ctx context.Context, snap world.Snapshot, epoch uint64, fp fingerprint.Situation, plan tactics.PlanIntent, code tactics.ResultCode) {
	if a.archive == nil {
		return
	}
	// Archiving is observability, not control flow: a failed append never
	// fails the tick.
	_ = a.archive.Append(ctx, ports.PlanExecutionRecord{
		AgentID:     snap.AgentID,
		Tick:        snap.Tick,
		Epoch:       epoch,
		Fingerprint: uint64(fp),
		Plan:        plan,
		ResultCode:  code,
		CommittedAt: a.Now(),
	})
}

// nopMetrics stands in when no recorder is wired so the commit path never
// has to nil-check.
type nopMetrics struct{}

func (nopMetrics) RecordCacheHit()                             {}
func (nopMetrics) RecordCacheMiss()                            {}
func (nopMetrics) RecordCacheCorruption()                      {}
func (nopMetrics) RecordCommit(tactics.Provenance)             {}
func (nopMetrics) RecordValidationRejected(tactics.Provenance) {}
func (nopMetrics) RecordGenerativeOutcome(bool)                {}
func (nopMetrics) RecordBreakerTransition(ports.BreakerState)  {}

func (a *Arbiter) session(agentID string) *session {
	s, ok := a.sessions[agentID]
	if !ok {
		s = &session{}
		a.sessions[agentID] = s
	}
	return s
}
