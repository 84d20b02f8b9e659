package engine

import (
	"sync"

	"github.com/roach88/reveal/internal/ir"
)

// EventType distinguishes session inputs.
type EventType int

const (
	// EventTypeTrack starts tracking an element.
	EventTypeTrack EventType = iota + 1
	// EventTypeUntrack stops tracking an element.
	EventTypeUntrack
	// EventTypeBreakpoint reports a new active breakpoint.
	EventTypeBreakpoint
	// EventTypeIntersection reports a new intersection entry for one element.
	EventTypeIntersection
	// EventTypeTable reports that the assignment table was edited.
	EventTypeTable
)

// String returns the event type name used in logs.
func (t EventType) String() string {
	switch t {
	case EventTypeTrack:
		return "track"
	case EventTypeUntrack:
		return "untrack"
	case EventTypeBreakpoint:
		return "breakpoint"
	case EventTypeIntersection:
		return "intersection"
	case EventTypeTable:
		return "table"
	default:
		return "unknown"
	}
}

// Event is one session input.
type Event struct {
	Type         EventType
	Target       string
	Breakpoint   ir.Breakpoint
	Intersection *ir.Intersection
}

// Track starts tracking target. Until an intersection arrives the element
// is unmeasured and unstyled.
func Track(target string) Event {
	return Event{Type: EventTypeTrack, Target: target}
}

// Untrack stops tracking target.
func Untrack(target string) Event {
	return Event{Type: EventTypeUntrack, Target: target}
}

// BreakpointChanged reports the viewport's new breakpoint class.
func BreakpointChanged(bp ir.Breakpoint) Event {
	return Event{Type: EventTypeBreakpoint, Breakpoint: bp}
}

// IntersectionChanged reports the latest observer entry for target. A nil
// entry resets the element to unmeasured.
func IntersectionChanged(target string, in *ir.Intersection) Event {
	var entry *ir.Intersection
	if in != nil {
		cp := *in
		entry = &cp
	}
	return Event{Type: EventTypeIntersection, Target: target, Intersection: entry}
}

// TableChanged reports that the table source returns new content.
func TableChanged() Event {
	return Event{Type: EventTypeTable}
}

// eventQueue is a thread-safe unbounded FIFO of session events.
//
// Hosts enqueue from observer callbacks on any goroutine; the session's Run
// loop dequeues. A buffered signal channel lets Run wait on the queue and
// on context cancellation at the same time.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // buffered, size 1
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Non-blocking: the buffer of 1 coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front event without blocking.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]
	q.events[0] = Event{} // release the intersection pointer

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available. The
// channel is closed once the queue is closed.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close stops accepting events and wakes any waiter.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
