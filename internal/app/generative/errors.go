package generative

import "errors"

var (
	// ErrBackendBusy means every worker slot is occupied; the caller keeps
	// its current tier and may retry on a later tick.
	ErrBackendBusy = errors.New("generative backend busy")
	// ErrCircuitOpen means the breaker is holding traffic off the backend.
	ErrCircuitOpen = errors.New("generative circuit open")
	// ErrBadCandidate means the backend answered but the answer could not
	// be read as a plan. It counts as a backend failure.
	ErrBadCandidate = errors.New("generative candidate malformed")
)

// BadCandidateError carries the parse diagnosis alongside ErrBadCandidate.
type BadCandidateError struct {
	Reason string
}

func (e *BadCandidateError) Error() string {
	return "generative candidate malformed: " + e.Reason
}

func (e *BadCandidateError) Unwrap() error { return ErrBadCandidate }
