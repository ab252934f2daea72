package mock

import (
	"context"
	"errors"
	"sync"
)

var ErrScriptExhausted = errors.New("mock backend script exhausted")

type reply struct {
	raw []byte
	err error
}

// Backend replays a scripted sequence of completions. Tests use it to drive
// the generative tier through success, garbage, error, and hang paths
// without a real model.
type Backend struct {
	mu      sync.Mutex
	replies []reply
	// Block, when set, ignores the script and parks every call until its
	// context expires.
	Block bool
}

func New() *Backend { return &Backend{} }

func (b *Backend) Reply(raw []byte) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies = append(b.replies, reply{raw: raw})
	return b
}

func (b *Backend) Fail(err error) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies = append(b.replies, reply{err: err})
	return b
}

func (b *Backend) Complete(ctx context.Context, _ string) ([]byte, error) {
	if b.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.replies) == 0 {
		return nil, ErrScriptExhausted
	}
	r := b.replies[0]
	b.replies = b.replies[1:]
	return r.raw, r.err
}
