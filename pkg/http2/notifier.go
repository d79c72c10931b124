package http2

import "sync"

// Notifier is a broadcast wakeup primitive: Wait blocks until the next
// Broadcast call (or returns immediately if one is pending), and every
// waiter wakes on each Broadcast, mirroring the session's requirement that
// all goroutines blocked on head_complete/body_received/window progress
// observe it without starvation.
type Notifier struct {
	mu      sync.Mutex
	ch      chan struct{}
	pending bool
}

// NewNotifier returns a ready-to-use Notifier.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{})}
}

// Wait blocks until the next Broadcast, or returns at once (consuming it)
// if a Broadcast happened since the last Wait returned.
func (n *Notifier) Wait() {
	n.mu.Lock()
	if n.pending {
		n.pending = false
		n.mu.Unlock()
		return
	}
	ch := n.ch
	n.mu.Unlock()
	<-ch
}

// Channel returns the current wakeup channel, for use in a select alongside
// other Notifiers (e.g. racing stream and connection window notifiers).
func (n *Notifier) Channel() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ch
}

// Broadcast wakes every current waiter and arms a fresh channel for the
// next round of waiters.
func (n *Notifier) Broadcast() {
	n.mu.Lock()
	defer n.mu.Unlock()
	close(n.ch)
	n.ch = make(chan struct{})
	n.pending = true
}
