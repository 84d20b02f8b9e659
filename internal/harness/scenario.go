package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reveal/internal/ir"
)

// DefaultPath is the form path a scenario edits when it names none.
const DefaultPath = "animations"

// Scenario is a conformance scenario: a sequence of builder edits followed
// by resolution checks against the resulting assignment table.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Path is the form path of the assignment table. Defaults to DefaultPath.
	Path string `yaml:"path,omitempty"`

	// Targets lists the target element options offered by the builder.
	// Empty means any non-empty target is accepted.
	Targets []string `yaml:"targets,omitempty"`

	// Table seeds the form with an assignment table before any step runs.
	Table map[string]any `yaml:"table,omitempty"`

	// Steps are builder operations and viewport signals applied in order.
	Steps []Step `yaml:"steps,omitempty"`

	// Checks resolve one target at one breakpoint after all steps ran.
	Checks []Check `yaml:"checks"`
}

// Step is a single builder operation or viewport signal.
type Step struct {
	// Action is one of add_row, remove_row, set_field, select_tab (builder)
	// or track, untrack, viewport, intersect (signals).
	Action string `yaml:"action"`

	Breakpoint string `yaml:"breakpoint"`
	Row        int    `yaml:"row,omitempty"`
	Field      string `yaml:"field,omitempty"`
	Value      string `yaml:"value,omitempty"`

	// Target names the element of a track, untrack or intersect signal.
	Target string `yaml:"target,omitempty"`

	// Ratio is the intersect signal's visible fraction. Omitted resets the
	// element to unmeasured.
	Ratio *float64 `yaml:"ratio,omitempty"`

	// ExpectError marks a step the builder must reject.
	ExpectError bool `yaml:"expect_error,omitempty"`

	// ExpectChanged lists, in emission order, the tracked elements whose
	// style must change as a result of this step. Nil skips the comparison;
	// an empty list asserts that nothing changed.
	ExpectChanged []string `yaml:"expect_changed,omitempty"`
}

// Check resolves one target and compares the descriptor.
type Check struct {
	Target     string `yaml:"target"`
	Breakpoint string `yaml:"breakpoint"`

	// Ratio is the intersection ratio. Omitted means not yet measured.
	Ratio *float64 `yaml:"ratio,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect is the expected resolution. Zero-valued optional fields are not
// compared.
type Expect struct {
	Styled bool `yaml:"styled"`

	// Animation is compared when present; "" asserts the name is empty.
	Animation *string `yaml:"animation,omitempty"`

	Kind      string `yaml:"kind,omitempty"`
	DelayMs   *int64 `yaml:"delay_ms,omitempty"`
	Source    string `yaml:"source,omitempty"`
}

// Step action names.
const (
	ActionAddRow    = "add_row"
	ActionRemoveRow = "remove_row"
	ActionSetField  = "set_field"
	ActionSelectTab = "select_tab"

	ActionTrack     = "track"
	ActionUntrack   = "untrack"
	ActionViewport  = "viewport"
	ActionIntersect = "intersect"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Checks) == 0 {
		return fmt.Errorf("checks list is required and must be non-empty")
	}
	if s.Table != nil {
		if _, err := ir.FromGo(s.Table); err != nil {
			return fmt.Errorf("table: %w", err)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, c := range s.Checks {
		if c.Target == "" {
			return fmt.Errorf("checks[%d]: target is required", i)
		}
		if _, err := ir.ParseBreakpoint(c.Breakpoint); err != nil {
			return fmt.Errorf("checks[%d]: %w", i, err)
		}
		if c.Ratio != nil && (*c.Ratio < 0 || *c.Ratio > 1) {
			return fmt.Errorf("checks[%d]: ratio must be within [0, 1]", i)
		}
		if !c.Expect.Styled && (c.Expect.Animation != nil || c.Expect.Kind != "" || c.Expect.DelayMs != nil || c.Expect.Source != "") {
			return fmt.Errorf("checks[%d]: an unstyled expectation cannot name animation fields", i)
		}
	}
	return nil
}

func validateStep(index int, s *Step) error {
	switch s.Action {
	case ActionAddRow, ActionSelectTab:
	case ActionRemoveRow:
		if s.Row < 0 {
			return fmt.Errorf("steps[%d]: row must be non-negative", index)
		}
	case ActionSetField:
		if s.Field == "" {
			return fmt.Errorf("steps[%d]: field is required for set_field", index)
		}
	case ActionTrack, ActionUntrack, ActionIntersect:
		if s.Target == "" {
			return fmt.Errorf("steps[%d]: target is required for %s", index, s.Action)
		}
		if s.Ratio != nil && (s.Action != ActionIntersect || *s.Ratio < 0 || *s.Ratio > 1) {
			return fmt.Errorf("steps[%d]: ratio must be within [0, 1] and only set on intersect", index)
		}
		return nil
	case ActionViewport:
		if _, err := ir.ParseBreakpoint(s.Breakpoint); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
		return nil
	case "":
		return fmt.Errorf("steps[%d]: action is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, s.Action)
	}
	if s.Breakpoint == "" {
		return fmt.Errorf("steps[%d]: breakpoint is required", index)
	}
	return nil
}
