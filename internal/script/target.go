package script

import (
	"encoding/json"
	"fmt"
)

// TargetKind is the wire discriminator of an ElementTarget.
type TargetKind string

// Target kinds understood by the runner.
const (
	TargetIdentifier  TargetKind = "identifier"
	TargetLabel       TargetKind = "label"
	TargetCoordinate  TargetKind = "coordinate"
	TargetElementType TargetKind = "elementType"
)

// String returns the string representation of the TargetKind.
func (k TargetKind) String() string {
	return string(k)
}

// ElementTarget names the UI element (or screen point) an action applies to.
// It is a closed tagged union: Kind selects which of the remaining fields are
// meaningful. Build values with Identifier, Label, Coordinate or ElementOfType.
type ElementTarget struct {
	Kind TargetKind

	// Value is the identifier, label, or element type name.
	Value string

	// X and Y are screen points for TargetCoordinate.
	X int
	Y int

	// Index selects among matches for TargetElementType.
	Index int
}

// Identifier targets an element by accessibility identifier.
func Identifier(id string) ElementTarget {
	return ElementTarget{Kind: TargetIdentifier, Value: id}
}

// Label targets an element by accessibility label.
func Label(label string) ElementTarget {
	return ElementTarget{Kind: TargetLabel, Value: label}
}

// Coordinate targets a screen point.
func Coordinate(x, y int) ElementTarget {
	return ElementTarget{Kind: TargetCoordinate, X: x, Y: y}
}

// ElementOfType targets the index-th element of the given type (e.g. "button").
func ElementOfType(elementType string, index int) ElementTarget {
	return ElementTarget{Kind: TargetElementType, Value: elementType, Index: index}
}

// String renders the target for logs and CLI output.
func (t ElementTarget) String() string {
	switch t.Kind {
	case TargetCoordinate:
		return fmt.Sprintf("coordinate(%d,%d)", t.X, t.Y)
	case TargetElementType:
		return fmt.Sprintf("%s[%d]", t.Value, t.Index)
	case TargetIdentifier, TargetLabel:
		return fmt.Sprintf("%s=%q", t.Kind, t.Value)
	default:
		return "<invalid target>"
	}
}

type targetWire struct {
	Type  *string `json:"type"`
	Value *string `json:"value,omitempty"`
	X     *int    `json:"x,omitempty"`
	Y     *int    `json:"y,omitempty"`
	Index *int    `json:"index,omitempty"`
}

// MarshalJSON encodes only the fields that belong to the target's variant.
func (t ElementTarget) MarshalJSON() ([]byte, error) {
	kind := string(t.Kind)
	w := targetWire{Type: &kind}

	switch t.Kind {
	case TargetIdentifier, TargetLabel:
		w.Value = &t.Value
	case TargetCoordinate:
		w.X, w.Y = &t.X, &t.Y
	case TargetElementType:
		w.Value, w.Index = &t.Value, &t.Index
	default:
		return nil, &DecodeError{Kind: KindTarget, Field: "type", Value: kind}
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the "type" discriminator first and rejects unknown kinds
// and variants missing their required fields.
func (t *ElementTarget) UnmarshalJSON(data []byte) error {
	var w targetWire
	if err := json.Unmarshal(data, &w); err != nil {
		return &DecodeError{Kind: KindTarget, Err: err}
	}
	if w.Type == nil {
		return &DecodeError{Kind: KindTarget, Field: "type"}
	}

	kind := TargetKind(*w.Type)
	var out ElementTarget
	switch kind {
	case TargetIdentifier, TargetLabel:
		if w.Value == nil {
			return missingTargetField(kind, "value")
		}
		out = ElementTarget{Kind: kind, Value: *w.Value}
	case TargetCoordinate:
		if w.X == nil {
			return missingTargetField(kind, "x")
		}
		if w.Y == nil {
			return missingTargetField(kind, "y")
		}
		out = Coordinate(*w.X, *w.Y)
	case TargetElementType:
		if w.Value == nil {
			return missingTargetField(kind, "value")
		}
		index := 0
		if w.Index != nil {
			index = *w.Index
		}
		out = ElementOfType(*w.Value, index)
	default:
		return &DecodeError{Kind: KindTarget, Field: "type", Value: *w.Type}
	}

	*t = out
	return nil
}

func missingTargetField(kind TargetKind, field string) error {
	return &DecodeError{Kind: KindTarget, Field: field, Value: string(kind), Missing: true}
}
