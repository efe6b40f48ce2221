package scene

import (
	"fmt"
	"strings"

	"blockstack.ai/internal/sim/geom"
)

// Entry pairs a label with its current box placement.
type Entry struct {
	Label string
	Box   geom.Box
}

// Scene holds the current placement of every labeled box. Iteration order is
// the order labels were first added (load order for decoded scenes); the
// executor relies on it to pick the "first occupant" of a destination the
// same way on every run.
type Scene struct {
	order []string
	boxes map[string]geom.Box
}

func New() *Scene {
	return &Scene{boxes: make(map[string]geom.Box)}
}

// Get returns the current placement for label.
func (s *Scene) Get(label string) (geom.Box, error) {
	b, ok := s.boxes[label]
	if !ok {
		return geom.Box{}, fmt.Errorf("scene: no box %q", label)
	}
	return b, nil
}

func (s *Scene) Has(label string) bool {
	_, ok := s.boxes[label]
	return ok
}

// Set replaces the placement for label wholesale, adding the label at the end
// of the iteration order if it is new.
func (s *Scene) Set(label string, b geom.Box) {
	if _, ok := s.boxes[label]; !ok {
		s.order = append(s.order, label)
	}
	s.boxes[label] = b
}

func (s *Scene) Len() int { return len(s.order) }

// Entries returns all placements in scene order. The slice is a copy.
func (s *Scene) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, label := range s.order {
		out = append(out, Entry{Label: label, Box: s.boxes[label]})
	}
	return out
}

// Clone returns an independent copy. Each plan execution runs against its own
// clone so runs never share mutable state.
func (s *Scene) Clone() *Scene {
	c := &Scene{
		order: append([]string(nil), s.order...),
		boxes: make(map[string]geom.Box, len(s.boxes)),
	}
	for label, b := range s.boxes {
		c.boxes[label] = b
	}
	return c
}

// IsTable reports whether a label denotes one of the fixed support surfaces
// (table1, table2, ...). Tables behave as ordinary boxes geometrically.
func IsTable(label string) bool {
	return strings.HasPrefix(label, "table")
}
