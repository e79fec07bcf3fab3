package interfaces

import "github.com/leadscoutai/leadscout/internal/models"

// EventSink accepts Event records in the order the core emits them. A
// host adapts Publish to whatever transport it drives (SSE, websocket,
// a log sink in tests) — the core never couples emission to a
// transport.
type EventSink interface {
	Publish(event models.Event)
}

// CancelSignal is a cooperatively observable flag. The supervisor and
// every worker poll IsSet between pipeline steps; nothing pre-empts a
// suspended adapter call.
type CancelSignal interface {
	IsSet() bool
}

// AtomicCancelSignal is the default CancelSignal: settable once from an
// external controller, safe to read concurrently from many goroutines.
type AtomicCancelSignal struct {
	ch     chan struct{}
	closed bool
}

// NewCancelSignal returns a fresh, unset signal.
func NewCancelSignal() *AtomicCancelSignal {
	return &AtomicCancelSignal{ch: make(chan struct{})}
}

// Cancel sets the signal. Safe to call more than once.
func (s *AtomicCancelSignal) Cancel() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// IsSet reports whether Cancel has been called.
func (s *AtomicCancelSignal) IsSet() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when Cancel is called, for use in
// select statements alongside adapter calls that accept a context.
func (s *AtomicCancelSignal) Done() <-chan struct{} {
	return s.ch
}
