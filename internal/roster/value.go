// internal/roster/value.go
//
// Attribute values and the empty sentinel.
//
// A value is one of:
//   - a scalar ("Male", "Sequence 4", "3"),
//   - a multi-valued set ([Human, Vampire]),
//   - the empty sentinel, meaning "not applicable to this character".
//
// In roster files the sentinel is written as the integer -1 or the token None.
// IsEmptyValue is the only place that knows about it.

package roster

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// EmptyDisplay is rendered in place of an empty value.
const EmptyDisplay = "❌"

const (
	sentinelInt   = "-1"
	sentinelToken = "None"
)

// Value is a single attribute value of an Entity. The zero Value is empty.
type Value struct {
	items []string
	multi bool
}

// Scalar returns a single-valued Value.
func Scalar(s string) Value { return Value{items: []string{s}} }

// Multi returns a set-valued Value. With no items it is empty.
func Multi(items ...string) Value {
	if len(items) == 0 {
		return Value{}
	}
	return Value{items: append([]string(nil), items...), multi: true}
}

// Empty returns the empty sentinel.
func Empty() Value { return Value{} }

// IsEmptyValue reports whether v is the "not applicable" sentinel.
func IsEmptyValue(v Value) bool { return len(v.items) == 0 }

// Items returns the value as a set of strings; scalars become a singleton.
func (v Value) Items() []string { return append([]string(nil), v.items...) }

// IsMulti reports whether the value was declared as a list.
func (v Value) IsMulti() bool { return v.multi }

// Display formats the value for a rendered cell.
func Display(v Value) string {
	if IsEmptyValue(v) {
		return EmptyDisplay
	}
	return strings.Join(v.items, ", ")
}

func (v Value) String() string { return Display(v) }

// UnmarshalYAML accepts a scalar, a sequence of scalars, null, -1 or None.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if isSentinel(node) {
			*v = Empty()
			return nil
		}
		*v = Scalar(strings.TrimSpace(node.Value))
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, c := range node.Content {
			if c.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: attribute list items must be scalars", c.Line)
			}
			items = append(items, strings.TrimSpace(c.Value))
		}
		*v = Multi(items...)
		return nil
	default:
		return fmt.Errorf("line %d: unsupported attribute value", node.Line)
	}
}

func isSentinel(node *yaml.Node) bool {
	switch node.Tag {
	case "!!null":
		return true
	case "!!int":
		return strings.TrimSpace(node.Value) == sentinelInt
	}
	return strings.TrimSpace(node.Value) == sentinelToken
}
