package signal

import (
	"context"
	"sync"
)

// Latch is a one-time gate: it starts closed, opens once, and never closes
// again. Waiters block until it opens.
type Latch struct {
	once sync.Once
	done chan struct{}
}

func NewLatch() *Latch {
	return &Latch{done: make(chan struct{})}
}

// Release opens the latch. Calls after the first are no-ops.
func (l *Latch) Release() {
	l.once.Do(func() {
		close(l.done)
	})
}

func (l *Latch) Released() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

func (l *Latch) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until the latch opens or ctx ends.
func (l *Latch) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
