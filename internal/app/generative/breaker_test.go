package generative

import (
	"testing"
	"time"

	"strategos/internal/app/ports"
)

func testBreaker(transitions *[]ports.BreakerState) (*Breaker, *time.Time) {
	now := time.Unix(1000, 0)
	b := NewBreaker(BreakerConfig{
		FailureThreshold: 3,
		Cooldown:         10 * time.Second,
		OnTransition: func(to ports.BreakerState) {
			if transitions != nil {
				*transitions = append(*transitions, to)
			}
		},
	})
	b.Now = func() time.Time { return now }
	return b, &now
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b, _ := testBreaker(nil)

	b.RecordFailure()
	b.RecordFailure()
	if b.State() != ports.BreakerClosed {
		t.Fatalf("expected closed below the threshold")
	}
	b.RecordFailure()
	if b.State() != ports.BreakerOpen {
		t.Fatalf("expected open at the threshold")
	}
	if b.Allow() {
		t.Fatalf("expected open breaker to refuse")
	}
}

func TestBreaker_SuccessResetsFailureRun(t *testing.T) {
	b, _ := testBreaker(nil)

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()
	if b.State() != ports.BreakerClosed {
		t.Fatalf("expected the run to reset on success")
	}
}

func TestBreaker_HalfOpenSingleProbe(t *testing.T) {
	b, now := testBreaker(nil)
	b.RecordFailure()
	b.RecordFailure()
	b.RecordFailure()

	*now = now.Add(9 * time.Second)
	if b.Allow() {
		t.Fatalf("expected refusal inside the cooldown window")
	}

	*now = now.Add(2 * time.Second)
	if !b.Allow() {
		t.Fatalf("expected one probe after the cooldown")
	}
	if b.State() != ports.BreakerHalfOpen {
		t.Fatalf("expected half-open state, got %s", b.State())
	}
	if b.Allow() {
		t.Fatalf("expected a second probe to be refused while one is out")
	}
}

func TestBreaker_ProbeOutcomeDecides(t *testing.T) {
	b, now := testBreaker(nil)
	b.RecordFailure()
	b.RecordFailure()
	b.RecordFailure()
	*now = now.Add(11 * time.Second)

	if !b.Allow() {
		t.Fatalf("expected probe")
	}
	b.RecordFailure()
	if b.State() != ports.BreakerOpen {
		t.Fatalf("expected failed probe to reopen")
	}

	*now = now.Add(11 * time.Second)
	if !b.Allow() {
		t.Fatalf("expected another probe")
	}
	b.RecordSuccess()
	if b.State() != ports.BreakerClosed {
		t.Fatalf("expected successful probe to close")
	}
	if !b.Allow() {
		t.Fatalf("expected closed breaker to admit traffic")
	}
}

func TestBreaker_TransitionsObserved(t *testing.T) {
	var transitions []ports.BreakerState
	b, now := testBreaker(&transitions)

	b.RecordFailure()
	b.RecordFailure()
	b.RecordFailure()
	*now = now.Add(11 * time.Second)
	b.Allow()
	b.RecordSuccess()

	want := []ports.BreakerState{ports.BreakerOpen, ports.BreakerHalfOpen, ports.BreakerClosed}
	if len(transitions) != len(want) {
		t.Fatalf("expected %d transitions, got %v", len(want), transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transition %d: expected %s, got %s", i, want[i], transitions[i])
		}
	}
}
