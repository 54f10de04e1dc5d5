package render

import (
	"context"
	"errors"
	"sync"

	"github.com/avast/retry-go/v4"
)

// Serialized wraps a Renderer so that at most one render call is ever in
// flight, retrying engine failures. The underlying engine exposes exactly
// one automation session; callers may still fan out over a worker pool and
// converge here.
type Serialized struct {
	mu       sync.Mutex
	inner    Renderer
	attempts uint
}

// NewSerialized wraps inner with exclusive access and up to attempts tries
// per document (minimum 1).
func NewSerialized(inner Renderer, attempts int) *Serialized {
	if attempts < 1 {
		attempts = 1
	}
	return &Serialized{inner: inner, attempts: uint(attempts)}
}

// Render acquires the single render slot and runs the inner renderer,
// retrying only engine failures. I/O errors and context cancellation are
// returned immediately.
func (s *Serialized) Render(ctx context.Context, srcPath, dstPath string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pages int
	err := retry.Do(
		func() error {
			n, err := s.inner.Render(ctx, srcPath, dstPath)
			if err != nil {
				return err
			}
			pages = n
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var re *RenderError
			return errors.As(err, &re)
		}),
	)
	if err != nil {
		return 0, err
	}
	return pages, nil
}
