package srf

import "sync/atomic"

// Tolerances collects the fixed epsilons used throughout the kernel. The same
// values are applied to endpoint matching, chord deviation and point
// classification, so changing one changes all of them consistently.
type Tolerances struct {
	// LengthEps is the distance below which two points are the same point.
	LengthEps float64
	// ChordTol is the maximum deviation between a curve (or surface) and
	// the chord that approximates it.
	ChordTol float64
	// MaxPwlDepth bounds the bisection depth of curve linearization.
	MaxPwlDepth int
	// ClassifyOffset is how far off an edge a point is placed when the region
	// next to that edge is classified during a Boolean operation.
	ClassifyOffset float64
	// RetryScale multiplies LengthEps and ClassifyOffset on the single retry
	// of an ambiguous Boolean operation.
	RetryScale float64
}

// DefaultTolerances returns the documented default tolerances.
func DefaultTolerances() Tolerances {
	return Tolerances{
		LengthEps:      1e-6,
		ChordTol:       1e-3,
		MaxPwlDepth:    12,
		ClassifyOffset: 1e-4,
		RetryScale:     10,
	}
}

// widened returns a copy with the Boolean tolerances scaled by RetryScale.
func (t Tolerances) widened() Tolerances {
	t.LengthEps *= t.RetryScale
	t.ClassifyOffset *= t.RetryScale
	return t
}

var tolPtr atomic.Pointer[Tolerances]

func init() {
	t := DefaultTolerances()
	tolPtr.Store(&t)
}

// SetTolerances replaces the process-wide tolerances. Zero fields fall back
// to their defaults. It must not be called while a Shell is being built.
func SetTolerances(t Tolerances) {
	d := DefaultTolerances()
	if t.LengthEps <= 0 {
		t.LengthEps = d.LengthEps
	}
	if t.ChordTol <= 0 {
		t.ChordTol = d.ChordTol
	}
	if t.MaxPwlDepth <= 0 {
		t.MaxPwlDepth = d.MaxPwlDepth
	}
	if t.ClassifyOffset <= 0 {
		t.ClassifyOffset = d.ClassifyOffset
	}
	if t.RetryScale <= 1 {
		t.RetryScale = d.RetryScale
	}
	tolPtr.Store(&t)
}

// CurrentTolerances returns the process-wide tolerances.
func CurrentTolerances() Tolerances {
	return *tolPtr.Load()
}
