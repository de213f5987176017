package controller

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/starford/tagtree/internal/search"
)

// ErrStopped is returned by Loop.Do once the loop has stopped.
var ErrStopped = errors.New("controller: loop stopped")

// Loop owns a Controller on a single goroutine. All access to the
// controller, its trees and its data nodes goes through Do or Post.
type Loop struct {
	c       *Controller
	ops     chan func(*Controller)
	done    chan struct{}
	running atomic.Bool
}

// NewLoop creates a loop for c. Call Run to start it.
func NewLoop(c *Controller) *Loop {
	l := &Loop{
		c:    c,
		ops:  make(chan func(*Controller), 64),
		done: make(chan struct{}),
	}
	c.loop = l
	return l
}

// Run applies queued closures until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return errors.New("controller: loop already running")
	}
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			l.c.CancelSearch()
			return nil
		case fn := <-l.ops:
			fn(l.c)
		}
	}
}

// Do runs fn on the loop and waits for it to finish. It must not be called
// from the loop itself.
func (l *Loop) Do(ctx context.Context, fn func(*Controller)) error {
	ran := make(chan struct{})
	op := func(c *Controller) {
		defer close(ran)
		fn(c)
	}
	select {
	case l.ops <- op:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
	select {
	case <-ran:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Post queues fn without waiting. It reports false once the loop has
// stopped.
func (l *Loop) Post(fn func(*Controller)) bool {
	select {
	case l.ops <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Executor exposes the loop to the search worker.
func (l *Loop) Executor() search.Executor {
	return search.ExecutorFunc(func(ctx context.Context, fn func()) error {
		return l.Do(ctx, func(*Controller) { fn() })
	})
}
