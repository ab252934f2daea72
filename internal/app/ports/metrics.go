package ports

import "strategos/internal/domain/tactics"

type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

// PlannerMetrics is the only emit path the planning tiers have; app packages
// never log. An external collector scrapes the recorder's snapshot.
type PlannerMetrics interface {
	RecordCacheHit()
	RecordCacheMiss()
	RecordCacheCorruption()
	RecordCommit(p tactics.Provenance)
	RecordValidationRejected(p tactics.Provenance)
	RecordGenerativeOutcome(ok bool)
	RecordBreakerTransition(to BreakerState)
}
