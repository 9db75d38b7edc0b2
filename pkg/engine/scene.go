package engine

import "github.com/chazu/brep/pkg/kernel"

// Part is a named solid defined by a script.
type Part struct {
	Name  string
	Solid kernel.Solid
}

// Scene is the result of evaluating a script: its parts in definition
// order. Redefining a name replaces the earlier part in place.
type Scene struct {
	Parts []Part
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// Define adds or replaces the part called name.
func (s *Scene) Define(name string, solid kernel.Solid) {
	if p := s.Lookup(name); p != nil {
		p.Solid = solid
		return
	}
	s.Parts = append(s.Parts, Part{Name: name, Solid: solid})
}

// Lookup returns the part called name, or nil.
func (s *Scene) Lookup(name string) *Part {
	for i := range s.Parts {
		if s.Parts[i].Name == name {
			return &s.Parts[i]
		}
	}
	return nil
}

// Len returns the number of parts.
func (s *Scene) Len() int {
	return len(s.Parts)
}
