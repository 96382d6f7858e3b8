package graph

import "slices"

// InputSlot is a connection point receiving data.
//
// Links is nil while nothing is connected. Without AllowMultiple it holds at
// most one id; a new connection replaces the existing one. With AllowMultiple
// it holds one id per connected origin output, in connection order.
type InputSlot struct {
	Name          string
	Type          string
	Label         string
	AllowMultiple bool
	Links         []LinkID
}

// OutputSlot is a connection point producing data. Links is never nil and
// every new connection appends to it.
type OutputSlot struct {
	Name  string
	Type  string
	Label string
	Links []LinkID

	data any
}

// IsConnected reports whether the input holds at least one link.
func (s *InputSlot) IsConnected() bool { return len(s.Links) > 0 }

// IsConnected reports whether the output feeds at least one link.
func (s *OutputSlot) IsConnected() bool { return len(s.Links) > 0 }

// Data returns the last value written with [Node.SetOutputData].
func (s *OutputSlot) Data() any { return s.data }

func (s *InputSlot) clone() *InputSlot {
	c := *s
	c.Links = nil
	return &c
}

func (s *OutputSlot) clone() *OutputSlot {
	c := *s
	c.Links = []LinkID{}
	c.data = nil
	return &c
}

func (s *InputSlot) removeLink(id LinkID) {
	s.Links = slices.DeleteFunc(s.Links, func(l LinkID) bool { return l == id })
	if len(s.Links) == 0 {
		s.Links = nil
	}
}

func (s *OutputSlot) removeLink(id LinkID) {
	s.Links = slices.DeleteFunc(s.Links, func(l LinkID) bool { return l == id })
	if s.Links == nil {
		s.Links = []LinkID{}
	}
}

// SlotOption configures a slot created by [Node.AddInput] or [Node.AddOutput].
type SlotOption func(*slotOptions)

type slotOptions struct {
	allowMultiple bool
	label         string
}

// WithAllowMultiple lets an input accept more than one concurrent link.
// It has no effect on outputs, which always fan out.
func WithAllowMultiple() SlotOption {
	return func(o *slotOptions) { o.allowMultiple = true }
}

// WithLabel sets the display label of a slot.
func WithLabel(label string) SlotOption {
	return func(o *slotOptions) { o.label = label }
}

func applySlotOptions(opts []SlotOption) slotOptions {
	var o slotOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
