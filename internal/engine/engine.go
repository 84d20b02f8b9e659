package engine

import (
	"context"
	"log/slog"
	"slices"

	"github.com/roach88/reveal/internal/ir"
)

// TableSource supplies the current assignment table. The builder's form is
// the usual source; the session never writes to it.
type TableSource interface {
	Table() ir.AssignmentTable
}

// TableFunc adapts a function to TableSource.
type TableFunc func() ir.AssignmentTable

// Table implements TableSource.
func (f TableFunc) Table() ir.AssignmentTable { return f() }

// StaticTable is a TableSource over a fixed table.
type StaticTable ir.AssignmentTable

// Table implements TableSource.
func (t StaticTable) Table() ir.AssignmentTable { return ir.AssignmentTable(t) }

// Change reports a tracked element whose resolved style changed.
type Change struct {
	Seq        int64         `json:"seq"`
	Target     string        `json:"target"`
	Styled     bool          `json:"styled"`
	Descriptor ir.Descriptor `json:"descriptor"`
}

// Listener is notified of every change, in seq order, on the goroutine that
// applied the event.
type Listener func(Change)

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithListener registers the change listener.
func WithListener(l Listener) SessionOption {
	return func(s *Session) { s.listener = l }
}

// WithLogger sets the logger for event tracing. The default discards.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// WithClock sets the clock used to stamp changes.
func WithClock(c *Clock) SessionOption {
	return func(s *Session) { s.clock = c }
}

// WithBreakpoint sets the initial breakpoint. The default is unclassified.
func WithBreakpoint(bp ir.Breakpoint) SessionOption {
	return func(s *Session) { s.breakpoint = bp }
}

// resolution is the last descriptor computed for a tracked element.
type resolution struct {
	desc ir.Descriptor
	ok   bool
}

// Session keeps resolution inputs for a set of tracked elements and
// re-resolves them when an input changes.
//
// Events are applied one at a time, either synchronously with Dispatch or
// through Enqueue and the Run loop. Dispatch must not be called while Run is
// active; Enqueue is safe from any goroutine.
type Session struct {
	resolver   *Resolver
	source     TableSource
	clock      *Clock
	queue      *eventQueue
	logger     *slog.Logger
	listener   Listener
	breakpoint ir.Breakpoint

	targets []string
	entries map[string]*ir.Intersection
	current map[string]resolution
}

// NewSession creates a session resolving against source.
func NewSession(r *Resolver, source TableSource, opts ...SessionOption) *Session {
	s := &Session{
		resolver: r,
		source:   source,
		clock:    NewClock(),
		queue:    newEventQueue(),
		logger:   slog.New(slog.DiscardHandler),
		entries:  make(map[string]*ir.Intersection),
		current:  make(map[string]resolution),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Breakpoint returns the active breakpoint.
func (s *Session) Breakpoint() ir.Breakpoint {
	return s.breakpoint
}

// Targets returns tracked elements in tracking order.
func (s *Session) Targets() []string {
	return slices.Clone(s.targets)
}

// Descriptor returns the current style of a tracked element.
func (s *Session) Descriptor(target string) (ir.Descriptor, bool) {
	res := s.current[target]
	return res.desc, res.ok
}

// Snapshot returns the styled elements and their descriptors.
func (s *Session) Snapshot() map[string]ir.Descriptor {
	out := make(map[string]ir.Descriptor, len(s.current))
	for target, res := range s.current {
		if res.ok {
			out[target] = res.desc
		}
	}
	return out
}

// Dispatch applies ev and returns the resulting changes. Re-applying an
// input that does not alter any descriptor yields no changes.
func (s *Session) Dispatch(ev Event) []Change {
	s.logger.Debug("session event",
		"type", ev.Type.String(),
		"target", ev.Target,
		"breakpoint", string(ev.Breakpoint),
	)

	var affected []string
	switch ev.Type {
	case EventTypeTrack:
		if _, ok := s.current[ev.Target]; ok || ev.Target == "" {
			return nil
		}
		s.targets = append(s.targets, ev.Target)
		s.current[ev.Target] = resolution{}
		affected = []string{ev.Target}

	case EventTypeUntrack:
		if _, ok := s.current[ev.Target]; !ok {
			return nil
		}
		s.targets = slices.DeleteFunc(s.targets, func(t string) bool { return t == ev.Target })
		delete(s.entries, ev.Target)
		prev := s.current[ev.Target]
		delete(s.current, ev.Target)
		if !prev.ok {
			return nil
		}
		return s.emit([]Change{{Target: ev.Target}})

	case EventTypeBreakpoint:
		if ev.Breakpoint == s.breakpoint {
			return nil
		}
		s.breakpoint = ev.Breakpoint
		affected = s.targets

	case EventTypeIntersection:
		if _, ok := s.current[ev.Target]; !ok {
			s.logger.Debug("intersection for untracked element", "target", ev.Target)
			return nil
		}
		s.entries[ev.Target] = ev.Intersection
		affected = []string{ev.Target}

	case EventTypeTable:
		affected = s.targets

	default:
		s.logger.Warn("unknown session event", "type", int(ev.Type))
		return nil
	}

	return s.emit(s.reresolve(affected))
}

// reresolve recomputes targets and returns the ones whose style changed.
func (s *Session) reresolve(targets []string) []Change {
	if len(targets) == 0 {
		return nil
	}
	table := s.source.Table()

	var changes []Change
	for _, target := range targets {
		desc, ok := s.resolver.Resolve(table, target, s.breakpoint, s.entries[target])
		prev := s.current[target]
		if prev.ok == ok && sameDescriptor(prev.desc, desc) {
			continue
		}
		s.current[target] = resolution{desc: desc, ok: ok}
		changes = append(changes, Change{Target: target, Styled: ok, Descriptor: desc})
	}
	return changes
}

func (s *Session) emit(changes []Change) []Change {
	for i := range changes {
		changes[i].Seq = s.clock.Next()
		s.logger.Debug("style changed",
			"seq", changes[i].Seq,
			"target", changes[i].Target,
			"animation", changes[i].Descriptor.AnimationName,
			"delay_ms", changes[i].Descriptor.DelayMs,
		)
		if s.listener != nil {
			s.listener(changes[i])
		}
	}
	return changes
}

// Enqueue submits an event for the Run loop.
// Returns false once the session has been stopped.
func (s *Session) Enqueue(ev Event) bool {
	return s.queue.Enqueue(ev)
}

// Run applies queued events in FIFO order until ctx is cancelled or Stop is
// called and the queue has drained. It must be called from one goroutine.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Debug("session starting")

	for {
		if ev, ok := s.queue.TryDequeue(); ok {
			s.Dispatch(ev)
			continue
		}

		select {
		case <-ctx.Done():
			s.logger.Debug("session stopping: context cancelled")
			s.queue.Close()
			return ctx.Err()

		case <-s.queue.Wait():
			// A closed queue keeps signalling; stop once it is drained.
			if s.isStopped() && s.queue.Len() == 0 {
				s.logger.Debug("session stopping: queue closed")
				return nil
			}
		}
	}
}

func (s *Session) isStopped() bool {
	s.queue.mu.Lock()
	defer s.queue.mu.Unlock()
	return s.queue.closed
}

// Stop closes the queue. Run returns after draining pending events.
func (s *Session) Stop() {
	s.queue.Close()
}

func sameDescriptor(a, b ir.Descriptor) bool {
	ka, kb := a.Keyframes, b.Keyframes
	a.Keyframes, b.Keyframes = nil, nil
	if a != b {
		return false
	}
	if ka == nil || kb == nil {
		return ka == kb
	}
	return *ka == *kb
}
