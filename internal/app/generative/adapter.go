package generative

import (
	"context"
	"errors"
	"time"

	"strategos/internal/app/ports"
	"strategos/internal/domain/tactics"
	"strategos/internal/domain/world"
)

type Status int

const (
	StatusPending Status = iota
	StatusReady
	StatusFailed
	StatusTimedOut
)

// Result is the terminal outcome of one generative request. Epoch is echoed
// from Submit so the caller can discard answers to questions it no longer
// asks.
type Result struct {
	Epoch     uint64
	Candidate tactics.PlanIntent
	Status    Status
	Err       error
}

// Ticket is the caller's handle on an in-flight request. Poll never blocks;
// Abandon cancels best-effort and releases the caller's interest.
type Ticket struct {
	epoch    uint64
	deadline time.Time
	done     chan Result
	cancel   context.CancelFunc
}

func (t *Ticket) Epoch() uint64 { return t.epoch }

// Poll returns the result if the request has finished. Once the deadline
// passes the ticket reports TimedOut even if the worker is still running:
// the backend does not get to hold the answer open past its budget.
func (t *Ticket) Poll() (Result, bool) {
	select {
	case r := <-t.done:
		return r, true
	default:
	}
	if time.Now().After(t.deadline) {
		return Result{Epoch: t.epoch, Status: StatusTimedOut, Err: context.DeadlineExceeded}, true
	}
	return Result{Epoch: t.epoch, Status: StatusPending}, false
}

func (t *Ticket) Abandon() { t.cancel() }

type Config struct {
	Workers  int
	Deadline time.Duration
	Breaker  BreakerConfig
}

func DefaultConfig() Config {
	return Config{
		Workers:  tactics.DefaultGenWorkers,
		Deadline: time.Duration(tactics.DefaultGenDeadlineMs) * time.Millisecond,
		Breaker:  DefaultBreakerConfig(),
	}
}

// Adapter runs generative planning requests against a backend without ever
// blocking the calling tick. Concurrency is bounded by a worker semaphore,
// every request carries an absolute deadline, and a circuit breaker sheds
// traffic while the backend is unhealthy.
type Adapter struct {
	cfg     Config
	backend ports.GenerativeBackend
	breaker *Breaker
	slots   chan struct{}
	metrics ports.PlannerMetrics
}

func New(cfg Config, backend ports.GenerativeBackend, metrics ports.PlannerMetrics) *Adapter {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = def.Deadline
	}
	if cfg.Breaker.OnTransition == nil && metrics != nil {
		cfg.Breaker.OnTransition = metrics.RecordBreakerTransition
	}
	return &Adapter{
		cfg:     cfg,
		backend: backend,
		breaker: NewBreaker(cfg.Breaker),
		slots:   make(chan struct{}, cfg.Workers),
		metrics: metrics,
	}
}

func (a *Adapter) BreakerState() ports.BreakerState { return a.breaker.State() }

// Submit starts a request for the given snapshot and epoch. It returns
// immediately: ErrBackendBusy when no worker slot is free, ErrCircuitOpen
// when the breaker refuses, otherwise a Ticket to poll.
func (a *Adapter) Submit(snap world.Snapshot, epoch uint64) (*Ticket, error) {
	select {
	case a.slots <- struct{}{}:
	default:
		return nil, ErrBackendBusy
	}
	if !a.breaker.Allow() {
		<-a.slots
		return nil, ErrCircuitOpen
	}

	deadline := time.Now().Add(a.cfg.Deadline)
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	t := &Ticket{epoch: epoch, deadline: deadline, done: make(chan Result, 1), cancel: cancel}
	prompt := BuildPrompt(snap)

	go func() {
		defer func() { <-a.slots }()
		defer cancel()
		t.done <- a.run(ctx, prompt, epoch)
	}()
	return t, nil
}

func (a *Adapter) run(ctx context.Context, prompt string, epoch uint64) Result {
	raw, err := a.backend.Complete(ctx, prompt)
	if err != nil || ctx.Err() != nil {
		switch {
		case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
			// Abandoned by the caller; says nothing about backend health,
			// so the breaker never hears about it.
			if err == nil {
				err = context.Canceled
			}
			return Result{Epoch: epoch, Status: StatusFailed, Err: err}
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
			// A success that lands after the deadline is still a timeout;
			// the ticket already reported TimedOut to its poller.
			a.fail()
			if err == nil {
				err = context.DeadlineExceeded
			}
			return Result{Epoch: epoch, Status: StatusTimedOut, Err: err}
		default:
			a.fail()
			return Result{Epoch: epoch, Status: StatusFailed, Err: err}
		}
	}
	plan, err := ParseCandidate(raw)
	if err != nil {
		a.fail()
		return Result{Epoch: epoch, Status: StatusFailed, Err: err}
	}
	a.breaker.RecordSuccess()
	if a.metrics != nil {
		a.metrics.RecordGenerativeOutcome(true)
	}
	return Result{Epoch: epoch, Status: StatusReady, Candidate: plan}
}

func (a *Adapter) fail() {
	a.breaker.RecordFailure()
	if a.metrics != nil {
		a.metrics.RecordGenerativeOutcome(false)
	}
}
