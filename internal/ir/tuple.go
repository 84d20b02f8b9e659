package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Tuple positions. The positions are fixed: a tuple is not a keyed record.
const (
	TupleTarget = 0
	TupleKind   = 1
	TupleOrder  = 2

	TupleArity = 3
)

// AssignmentTuple assigns one entrance animation to one element at one
// breakpoint: [targetElementId, animationType, orderIndex].
//
// OrderIndex is written once when the row is created and never recomputed,
// so it is row identity for delay purposes, not a display index.
type AssignmentTuple struct {
	Target     string
	Kind       string
	OrderIndex int64
	OrderSet   bool // false when the order slot is missing or malformed
}

// NewTuple builds a fully populated tuple.
func NewTuple(target, kind string, order int64) AssignmentTuple {
	return AssignmentTuple{Target: target, Kind: kind, OrderIndex: order, OrderSet: true}
}

// Complete reports whether every slot is populated.
func (t AssignmentTuple) Complete() bool {
	return t.Target != "" && t.Kind != "" && t.OrderSet
}

// Value encodes the tuple as a positional form array. Unset slots before the
// last populated slot become IRNull; trailing unset slots are omitted.
func (t AssignmentTuple) Value() IRArray {
	slots := [TupleArity]IRValue{}
	last := -1
	if t.Target != "" {
		slots[TupleTarget] = IRString(t.Target)
		last = TupleTarget
	}
	if t.Kind != "" {
		slots[TupleKind] = IRString(t.Kind)
		last = TupleKind
	}
	if t.OrderSet {
		slots[TupleOrder] = IRInt(t.OrderIndex)
		last = TupleOrder
	}

	arr := make(IRArray, last+1)
	for i := range arr {
		if slots[i] == nil {
			arr[i] = IRNull{}
			continue
		}
		arr[i] = slots[i]
	}
	return arr
}

// TupleFromValue decodes a positional form array. Anything that is not an
// array decodes to the zero tuple; slots with the wrong type stay unset.
func TupleFromValue(v IRValue) AssignmentTuple {
	var t AssignmentTuple
	arr, ok := v.(IRArray)
	if !ok {
		return t
	}
	if len(arr) > TupleTarget {
		if s, ok := arr[TupleTarget].(IRString); ok {
			t.Target = string(s)
		}
	}
	if len(arr) > TupleKind {
		if s, ok := arr[TupleKind].(IRString); ok {
			t.Kind = string(s)
		}
	}
	if len(arr) > TupleOrder {
		if n, ok := arr[TupleOrder].(IRInt); ok {
			t.OrderIndex = int64(n)
			t.OrderSet = true
		}
	}
	return t
}

// MarshalJSON encodes the tuple in its positional form.
func (t AssignmentTuple) MarshalJSON() ([]byte, error) {
	return MarshalIRValue(t.Value())
}

// UnmarshalJSON decodes a positional array. Malformed slots are tolerated.
func (t *AssignmentTuple) UnmarshalJSON(data []byte) error {
	v, err := decodeLenient(data)
	if err != nil {
		return fmt.Errorf("assignment tuple: %w", err)
	}
	*t = TupleFromValue(v)
	return nil
}

// AssignmentTable maps each breakpoint to its ordered assignment list.
// A missing key and an empty list both mean "nothing authored".
type AssignmentTable map[Breakpoint][]AssignmentTuple

// Matching returns the tuples at bp whose target equals target, in
// authoring order. A nil table yields nothing.
func (t AssignmentTable) Matching(bp Breakpoint, target string) []AssignmentTuple {
	var out []AssignmentTuple
	for _, tuple := range t[bp] {
		if tuple.Target == target {
			out = append(out, tuple)
		}
	}
	return out
}

// Targets returns the distinct targets referenced anywhere in the table,
// in breakpoint then authoring order.
func (t AssignmentTable) Targets() []string {
	seen := make(map[string]bool)
	var out []string
	for _, bp := range Breakpoints {
		for _, tuple := range t[bp] {
			if tuple.Target == "" || seen[tuple.Target] {
				continue
			}
			seen[tuple.Target] = true
			out = append(out, tuple.Target)
		}
	}
	return out
}

// Value encodes the table as the form object the builder writes.
// Breakpoints absent from the table are absent from the object.
func (t AssignmentTable) Value() IRObject {
	obj := make(IRObject, len(t))
	for bp, tuples := range t {
		arr := make(IRArray, len(tuples))
		for i, tuple := range tuples {
			arr[i] = tuple.Value()
		}
		obj[string(bp)] = arr
	}
	return obj
}

// TableFromValue decodes the form object found at the builder's path.
// Unknown keys and non-list values are ignored; a nil or non-object value
// yields an empty table.
func TableFromValue(v IRValue) AssignmentTable {
	table := AssignmentTable{}
	obj, ok := v.(IRObject)
	if !ok {
		return table
	}
	for _, bp := range Breakpoints {
		arr, ok := obj[string(bp)].(IRArray)
		if !ok {
			continue
		}
		tuples := make([]AssignmentTuple, len(arr))
		for i, elem := range arr {
			tuples[i] = TupleFromValue(elem)
		}
		table[bp] = tuples
	}
	return table
}

// ParseTable decodes a JSON assignment table such as
// {"mobile": [["hero", "fadeIn", 0]]}. null decodes to an empty table.
// Numbers that are not integers in int64 range become unset slots rather
// than failing the whole table.
func ParseTable(data []byte) (AssignmentTable, error) {
	v, err := decodeLenient(data)
	if err != nil {
		return nil, fmt.Errorf("parse table: %w", err)
	}
	switch v := v.(type) {
	case IRNull:
		return AssignmentTable{}, nil
	case IRObject:
		return TableFromValue(v), nil
	default:
		return nil, fmt.Errorf("parse table: expected object, got %s", kindOf(v))
	}
}

func decodeLenient(data []byte) (IRValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return lenientValue(raw), nil
}

// lenientValue is FromGo for decoded JSON that never fails: numbers that
// IRInt cannot hold exactly decode as IRNull.
func lenientValue(v any) IRValue {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return IRInt(n)
		}
		f, err := val.Float64()
		if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return IRNull{}
		}
		return IRInt(int64(f))
	case []any:
		arr := make(IRArray, len(val))
		for i, elem := range val {
			arr[i] = lenientValue(elem)
		}
		return arr
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, elem := range val {
			obj[k] = lenientValue(elem)
		}
		return obj
	case string:
		return IRString(val)
	case bool:
		return IRBool(val)
	default:
		return IRNull{}
	}
}

// MarshalJSON encodes the table with breakpoint keys.
func (t AssignmentTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Value())
}
