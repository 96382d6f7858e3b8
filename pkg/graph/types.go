package graph

import "strings"

// LinkID identifies a link within a single graph. Ids are allocated from a
// monotonic counter and never reused.
type LinkID int

// SlotKind tags the side of a connection in notifications.
type SlotKind int

const (
	// SlotInput marks an input slot.
	SlotInput SlotKind = 1
	// SlotOutput marks an output slot.
	SlotOutput SlotKind = 2
)

func (k SlotKind) String() string {
	switch k {
	case SlotInput:
		return "input"
	case SlotOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Mode controls whether a node runs during [Graph.RunStep].
type Mode int

const (
	ModeAlways    Mode = 0 // executed on every step
	ModeOnEvent   Mode = 1 // executed only when an event reaches it
	ModeNever     Mode = 2 // muted
	ModeOnTrigger Mode = 3 // executed only when triggered
)

func (m Mode) String() string {
	switch m {
	case ModeAlways:
		return "always"
	case ModeOnEvent:
		return "on_event"
	case ModeNever:
		return "never"
	case ModeOnTrigger:
		return "on_trigger"
	default:
		return "unknown"
	}
}

// Shape is the visual shape hint carried by a node.
type Shape int

const (
	ShapeUnset Shape = iota
	ShapeBox
	ShapeRound
	ShapeCircle
	ShapeCard
	// ShapeCustom means the shape name is not a known enum value; the raw
	// name is kept in Node.CustomShape.
	ShapeCustom
)

var shapeNames = map[string]Shape{
	"box":    ShapeBox,
	"round":  ShapeRound,
	"circle": ShapeCircle,
	"card":   ShapeCard,
}

// ResolveShape maps a shape name to its enum value. The empty string and
// "default" resolve to ShapeUnset; any other unknown name resolves to
// ShapeCustom and is returned unchanged as the second value.
func ResolveShape(name string) (Shape, string) {
	if name == "" || name == "default" {
		return ShapeUnset, ""
	}
	if s, ok := shapeNames[name]; ok {
		return s, ""
	}
	return ShapeCustom, name
}

func (s Shape) String() string {
	for name, v := range shapeNames {
		if v == s {
			return name
		}
	}
	if s == ShapeCustom {
		return "custom"
	}
	return ""
}

// AnyType is the wildcard slot type.
const AnyType = "*"

// TypesCompatible reports whether an output of type a may feed an input of
// type b. Empty and "*" types match anything. Comma separated type lists are
// compatible when any member matches. Comparison is case-insensitive.
func TypesCompatible(a, b string) bool {
	if a == "" || a == AnyType || b == "" || b == AnyType || a == b {
		return true
	}
	a, b = strings.ToLower(a), strings.ToLower(b)
	if !strings.Contains(a, ",") && !strings.Contains(b, ",") {
		return a == b
	}
	for _, ta := range strings.Split(a, ",") {
		for _, tb := range strings.Split(b, ",") {
			if TypesCompatible(strings.TrimSpace(ta), strings.TrimSpace(tb)) {
				return true
			}
		}
	}
	return false
}
