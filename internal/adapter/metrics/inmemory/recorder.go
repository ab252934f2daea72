package inmemory

import (
	"sync"

	"strategos/internal/app/ports"
	"strategos/internal/domain/tactics"
)

type Snapshot struct {
	CommitTotal        uint64            `json:"commit_total"`
	CommitByProvenance map[string]uint64 `json:"commit_by_provenance"`
	CacheHit           uint64            `json:"cache_hit"`
	CacheMiss          uint64            `json:"cache_miss"`
	CacheCorruption    uint64            `json:"cache_corruption"`
	RejectedByTier     map[string]uint64 `json:"rejected_by_tier"`
	GenerativeOK       uint64            `json:"generative_ok"`
	GenerativeFailed   uint64            `json:"generative_failed"`
	BreakerTransitions map[string]uint64 `json:"breaker_transitions"`
}

// Recorder is the in-process ports.PlannerMetrics implementation. An
// external collector scrapes Snapshot through the KPI endpoint.
type Recorder struct {
	mu          sync.Mutex
	commits     map[string]uint64
	cacheHit    uint64
	cacheMiss   uint64
	cacheCor    uint64
	rejected    map[string]uint64
	genOK       uint64
	genFailed   uint64
	transitions map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		commits:     map[string]uint64{},
		rejected:    map[string]uint64{},
		transitions: map[string]uint64{},
	}
}

func (r *Recorder) RecordCacheHit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cacheHit++
}

func (r *Recorder) RecordCacheMiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cacheMiss++
}

func (r *Recorder) RecordCacheCorruption() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cacheCor++
}

func (r *Recorder) RecordCommit(p tactics.Provenance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits[string(p)]++
}

func (r *Recorder) RecordValidationRejected(p tactics.Provenance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected[string(p)]++
}

func (r *Recorder) RecordGenerativeOutcome(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.genOK++
	} else {
		r.genFailed++
	}
}

func (r *Recorder) RecordBreakerTransition(to ports.BreakerState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions[string(to)]++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		CacheHit:           r.cacheHit,
		CacheMiss:          r.cacheMiss,
		CacheCorruption:    r.cacheCor,
		GenerativeOK:       r.genOK,
		GenerativeFailed:   r.genFailed,
		CommitByProvenance: make(map[string]uint64, len(r.commits)),
		RejectedByTier:     make(map[string]uint64, len(r.rejected)),
		BreakerTransitions: make(map[string]uint64, len(r.transitions)),
	}
	for k, v := range r.commits {
		out.CommitByProvenance[k] = v
		out.CommitTotal += v
	}
	for k, v := range r.rejected {
		out.RejectedByTier[k] = v
	}
	for k, v := range r.transitions {
		out.BreakerTransitions[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
