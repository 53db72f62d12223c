package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// expiryGrace is added on top of the attempt deadline before auto-submit so
// a submit request sent at the last second still wins the race.
const expiryGrace = 2 * time.Second

// DeadlineWatcher runs one cancellable timer goroutine per in-progress
// attempt and fires the expiry handler when the time budget runs out.
// Submitting an attempt cancels its watcher; a restart rearms watchers for
// attempts still in progress.
type DeadlineWatcher struct {
	cancels  sync.Map // map[uint]context.CancelFunc
	onExpire func(ctx context.Context, attemptID uint)
}

// NewDeadlineWatcher creates a watcher. The expiry handler is attached
// afterwards to break the construction cycle with the attempt service.
func NewDeadlineWatcher() *DeadlineWatcher {
	return &DeadlineWatcher{}
}

// SetExpireHandler attaches the function called when an attempt expires.
func (w *DeadlineWatcher) SetExpireHandler(fn func(ctx context.Context, attemptID uint)) {
	w.onExpire = fn
}

// Watch arms a timer for the attempt. An existing timer for the same attempt
// is replaced.
func (w *DeadlineWatcher) Watch(ctx context.Context, attemptID uint, deadline time.Time) {
	attemptCtx, cancel := context.WithCancel(ctx)

	if prev, loaded := w.cancels.LoadAndDelete(attemptID); loaded {
		prev.(context.CancelFunc)()
	}
	w.cancels.Store(attemptID, cancel)

	go w.run(attemptCtx, cancel, attemptID, deadline)
	log.Printf("[DeadlineWatcher] attempt #%d armed, deadline %v", attemptID, deadline)
}

// Cancel stops the timer for the attempt, typically because it was
// submitted. Cancelling an unknown attempt is a no-op.
func (w *DeadlineWatcher) Cancel(attemptID uint) {
	if cancel, loaded := w.cancels.LoadAndDelete(attemptID); loaded {
		cancel.(context.CancelFunc)()
		log.Printf("[DeadlineWatcher] attempt #%d timer cancelled", attemptID)
	}
}

func (w *DeadlineWatcher) run(ctx context.Context, cancel context.CancelFunc, attemptID uint, deadline time.Time) {
	defer cancel()

	wait := time.Until(deadline) + expiryGrace
	if wait < 0 {
		wait = 0
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(wait):
	}

	w.cancels.Delete(attemptID)

	if w.onExpire == nil {
		log.Printf("[DeadlineWatcher] attempt #%d expired but no handler is attached", attemptID)
		return
	}

	log.Printf("[DeadlineWatcher] attempt #%d expired, auto-submitting", attemptID)
	w.onExpire(ctx, attemptID)
}
