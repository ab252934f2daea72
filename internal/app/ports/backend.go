package ports

import "context"

// GenerativeBackend is the reasoning capability boundary: one prompt in, raw
// untrusted bytes out. Whatever comes back must survive parsing and full
// validation before any step of it can act.
type GenerativeBackend interface {
	Complete(ctx context.Context, prompt string) ([]byte, error)
}
