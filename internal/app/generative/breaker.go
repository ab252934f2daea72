package generative

import (
	"sync"
	"time"

	"strategos/internal/app/ports"
	"strategos/internal/domain/tactics"
)

type BreakerConfig struct {
	// FailureThreshold is the run of consecutive failures that opens the
	// breaker.
	FailureThreshold int
	// Cooldown is how long the breaker stays open before letting one
	// probe through.
	Cooldown time.Duration
	// OnTransition, when set, observes every state change.
	OnTransition func(ports.BreakerState)
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: tactics.DefaultBreakerFailures,
		Cooldown:         time.Duration(tactics.DefaultBreakerCooldownMs) * time.Millisecond,
	}
}

// Breaker shields the backend after repeated failures. Closed admits all
// traffic; Open rejects until the cooldown elapses; HalfOpen admits a
// single probe whose outcome decides the next state.
type Breaker struct {
	mu       sync.Mutex
	cfg      BreakerConfig
	state    ports.BreakerState
	failures int
	openedAt time.Time
	probing  bool

	Now func() time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	def := DefaultBreakerConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	return &Breaker{cfg: cfg, state: ports.BreakerClosed, Now: time.Now}
}

// Allow reports whether a request may go out. In HalfOpen only one probe
// is admitted at a time.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case ports.BreakerClosed:
		return true
	case ports.BreakerOpen:
		if b.Now().Sub(b.openedAt) < b.cfg.Cooldown {
			return false
		}
		b.transition(ports.BreakerHalfOpen)
		b.probing = true
		return true
	default: // half-open
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.probing = false
	if b.state != ports.BreakerClosed {
		b.transition(ports.BreakerClosed)
	}
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
	switch b.state {
	case ports.BreakerHalfOpen:
		b.open()
	case ports.BreakerClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.open()
		}
	}
}

func (b *Breaker) State() ports.BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) open() {
	b.failures = 0
	b.openedAt = b.Now()
	b.transition(ports.BreakerOpen)
}

func (b *Breaker) transition(to ports.BreakerState) {
	b.state = to
	if b.cfg.OnTransition != nil {
		b.cfg.OnTransition(to)
	}
}
