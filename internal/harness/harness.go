package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/roach88/reveal/internal/builder"
	"github.com/roach88/reveal/internal/engine"
	"github.com/roach88/reveal/internal/formstate"
	"github.com/roach88/reveal/internal/ir"
	"github.com/roach88/reveal/internal/store"
	"github.com/roach88/reveal/internal/testutil"
)

// Harness runs one scenario against a fresh form, builder and store. A
// session tracks the scenario's elements against the builder's table and
// collects the style changes each step causes.
type Harness struct {
	store   *store.Store
	form    *formstate.Tree
	builder *builder.Builder
	session *engine.Session
	clock   *engine.Clock
	doc     string
	logger  *slog.Logger
	changed []engine.Change
}

// RunOption configures a scenario run.
type RunOption func(*Harness)

// WithLogger logs each step and check at Debug level.
func WithLogger(l *slog.Logger) RunOption {
	return func(h *Harness) { h.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database. Row identities and
// trace sequence numbers start at 1, so repeated runs produce identical
// traces.
//
// Execution flow:
//  1. Seed the form with the scenario table, if any
//  2. Apply each builder step, saving a revision and re-resolving tracked
//     elements after each; apply each signal step to the session
//  3. Resolve every check through the session with the default catalog
//     and fallback chain
func Run(scenario *Scenario, opts ...RunOption) (*Result, error) {
	st, err := store.Open(":memory:", store.WithIDGenerator(store.NewSequentialIDs("doc-"+scenario.Name)))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	path := scenario.Path
	if path == "" {
		path = DefaultPath
	}

	form, err := testutil.SeedForm(path, scenario.Table)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	b, err := builder.New(form, path,
		builder.WithTargets(ir.ValueOptions(scenario.Targets...)),
		builder.WithSequencer(testutil.NewRowSequence()),
	)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		store:   st,
		form:    form,
		builder: b,
		clock:   engine.NewClock(),
		doc:     scenario.Name,
		logger:  slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(h)
	}

	h.session = engine.NewSession(engine.NewResolver(ir.DefaultCatalog()), engine.TableFunc(b.Table),
		engine.WithLogger(h.logger),
		engine.WithListener(func(c engine.Change) { h.changed = append(h.changed, c) }),
	)

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	table := b.Table()
	for i, check := range scenario.Checks {
		h.evaluateCheck(i, check, result)
	}

	doc, err := st.LoadDocument(ctx, h.doc)
	switch {
	case err == nil:
		result.State["hash"] = doc.Hash
		result.State["revision"] = doc.Revision
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("load document: %w", err)
	}
	result.State["table"] = table.Value()

	return result, nil
}

// executeStep applies one step. Builder rejections and unexpected style
// changes are expectation failures; store failures abort the run.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	h.changed = h.changed[:0]

	var (
		args map[string]any
		out  map[string]any
	)
	switch step.Action {
	case ActionTrack, ActionUntrack, ActionViewport, ActionIntersect:
		args, out = h.signal(step)
	default:
		var err error
		args, out, err = h.edit(ctx, index, step, result)
		if err != nil {
			return err
		}
	}

	changed := make([]string, len(h.changed))
	for i, c := range h.changed {
		changed[i] = c.Target
	}
	if step.ExpectChanged != nil && !slices.Equal(step.ExpectChanged, changed) {
		result.AddError(fmt.Sprintf("steps[%d] %s: changed: expected %v, got %v", index, step.Action, step.ExpectChanged, changed))
	}

	h.logger.Debug("step", "action", step.Action, "breakpoint", step.Breakpoint, "changed", len(changed))
	result.AddTrace("step", step.Action, args, out, h.clock.Next())
	return nil
}

// edit applies a builder operation, saves the form and re-resolves the
// tracked elements against the edited table.
func (h *Harness) edit(ctx context.Context, index int, step Step, result *Result) (args, out map[string]any, err error) {
	bp := ir.Breakpoint(step.Breakpoint)
	args = map[string]any{"breakpoint": step.Breakpoint}
	out = map[string]any{}

	var stepErr error
	switch step.Action {
	case ActionAddRow:
		var id builder.RowID
		id, stepErr = h.builder.AddRow(bp)
		if stepErr == nil {
			out["row_id"] = int64(id)
		}
	case ActionRemoveRow:
		args["row"] = step.Row
		stepErr = h.builder.RemoveRow(bp, step.Row)
	case ActionSetField:
		args["row"] = step.Row
		args["field"] = step.Field
		args["value"] = step.Value
		var field builder.Field
		field, stepErr = builder.ParseField(step.Field)
		if stepErr == nil {
			stepErr = h.builder.SetField(bp, step.Row, field, step.Value)
		}
	case ActionSelectTab:
		stepErr = h.builder.SelectTab(bp)
		if stepErr == nil {
			out["active"] = string(h.builder.ActiveTab())
		}
	default:
		return nil, nil, fmt.Errorf("unknown action %q", step.Action)
	}

	switch {
	case stepErr != nil && !step.ExpectError:
		result.AddError(fmt.Sprintf("steps[%d] %s: %v", index, step.Action, stepErr))
	case stepErr == nil && step.ExpectError:
		result.AddError(fmt.Sprintf("steps[%d] %s: expected an error", index, step.Action))
	}
	out["ok"] = stepErr == nil

	doc, saved, err := h.store.SaveDocument(ctx, h.doc, h.form.Value())
	if err != nil {
		return nil, nil, fmt.Errorf("save document: %w", err)
	}
	out["revision"] = doc.Revision
	out["saved"] = saved
	if bp.Valid() {
		out["state"] = h.builder.State(bp).String()
	}

	h.session.Dispatch(engine.TableChanged())
	if len(h.changed) > 0 {
		out["changes"] = traceChanges(h.changed)
	}
	return args, out, nil
}

// signal feeds a viewport signal to the session.
func (h *Harness) signal(step Step) (args, out map[string]any) {
	args = map[string]any{}
	var ev engine.Event
	switch step.Action {
	case ActionTrack:
		args["target"] = step.Target
		ev = engine.Track(step.Target)
	case ActionUntrack:
		args["target"] = step.Target
		ev = engine.Untrack(step.Target)
	case ActionViewport:
		args["breakpoint"] = step.Breakpoint
		ev = engine.BreakpointChanged(ir.Breakpoint(step.Breakpoint))
	case ActionIntersect:
		args["target"] = step.Target
		var in *ir.Intersection
		if step.Ratio != nil {
			in = engine.Ratio(*step.Ratio)
			args["ratio"] = formatRatio(*step.Ratio)
		}
		ev = engine.IntersectionChanged(step.Target, in)
	}
	h.session.Dispatch(ev)
	return args, map[string]any{"changes": traceChanges(h.changed)}
}

// evaluateCheck resolves one target through the session at the check's
// breakpoint and intersection, then compares it with the expectation.
func (h *Harness) evaluateCheck(index int, check Check, result *Result) {
	bp := ir.Breakpoint(check.Breakpoint)
	args := map[string]any{"target": check.Target, "breakpoint": check.Breakpoint}

	var in *ir.Intersection
	if check.Ratio != nil {
		in = engine.Ratio(*check.Ratio)
		args["ratio"] = formatRatio(*check.Ratio)
	}

	h.session.Dispatch(engine.Track(check.Target))
	h.session.Dispatch(engine.BreakpointChanged(bp))
	h.session.Dispatch(engine.IntersectionChanged(check.Target, in))
	h.changed = h.changed[:0]

	d, ok := h.session.Descriptor(check.Target)
	out := map[string]any{"styled": ok}
	if ok {
		out["animation"] = d.AnimationName
		out["kind"] = d.Kind
		out["delay_ms"] = d.DelayMs
		out["duration_ms"] = d.DurationMs
		out["source"] = string(d.Source)
		out["style"] = engine.StyleCSS(d, ok)
	}

	for _, msg := range compare(check.Expect, d, ok) {
		result.AddError(fmt.Sprintf("checks[%d] %s@%s: %s", index, check.Target, check.Breakpoint, msg))
	}

	h.logger.Debug("check", "target", check.Target, "breakpoint", check.Breakpoint, "styled", ok)
	result.AddTrace("check", "resolve", args, out, h.clock.Next())
}

// formatRatio renders a ratio for the trace. Canonical JSON has no floats.
func formatRatio(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func traceChanges(changes []engine.Change) []any {
	out := make([]any, len(changes))
	for i, c := range changes {
		entry := map[string]any{"target": c.Target, "styled": c.Styled}
		if c.Styled {
			entry["animation"] = c.Descriptor.AnimationName
			entry["delay_ms"] = c.Descriptor.DelayMs
			entry["source"] = string(c.Descriptor.Source)
		}
		out[i] = entry
	}
	return out
}

func compare(want Expect, d ir.Descriptor, ok bool) []string {
	if want.Styled != ok {
		return []string{fmt.Sprintf("styled: expected %v, got %v", want.Styled, ok)}
	}
	var errs []string
	if want.Animation != nil && *want.Animation != d.AnimationName {
		errs = append(errs, fmt.Sprintf("animation: expected %q, got %q", *want.Animation, d.AnimationName))
	}
	if want.Kind != "" && want.Kind != d.Kind {
		errs = append(errs, fmt.Sprintf("kind: expected %q, got %q", want.Kind, d.Kind))
	}
	if want.DelayMs != nil && *want.DelayMs != d.DelayMs {
		errs = append(errs, fmt.Sprintf("delay_ms: expected %d, got %d", *want.DelayMs, d.DelayMs))
	}
	if want.Source != "" && want.Source != string(d.Source) {
		errs = append(errs, fmt.Sprintf("source: expected %q, got %q", want.Source, d.Source))
	}
	return errs
}
