// Package srf is a boundary-representation geometry kernel. Curves and
// surfaces are rational Bezier entities of degree three or less; surfaces are
// trimmed by curves that they share with their neighbours, and both are owned
// by a Shell that addresses them through stable handles.
//
// The kernel is single-threaded: every operation runs to completion on the
// calling goroutine. A Shell returned by a constructor is never modified
// afterwards, so concurrent reads of a finished Shell are safe.
package srf

import "fmt"

// Bernstein returns the k-th Bernstein basis polynomial of the given degree
// at t. Only degrees 1 through 3 are supported; anything else panics.
func Bernstein(k, deg int, t float64) float64 {
	switch deg {
	case 1:
		switch k {
		case 0:
			return 1 - t
		case 1:
			return t
		}
	case 2:
		switch k {
		case 0:
			return (1 - t) * (1 - t)
		case 1:
			return 2 * (1 - t) * t
		case 2:
			return t * t
		}
	case 3:
		switch k {
		case 0:
			return (1 - t) * (1 - t) * (1 - t)
		case 1:
			return 3 * (1 - t) * (1 - t) * t
		case 2:
			return 3 * (1 - t) * t * t
		case 3:
			return t * t * t
		}
	}
	panic(fmt.Sprintf("srf: Bernstein(%d, %d): unsupported degree or index", k, deg))
}

// BernsteinDerivative returns d/dt of Bernstein(k, deg, t).
func BernsteinDerivative(k, deg int, t float64) float64 {
	switch deg {
	case 1:
		switch k {
		case 0:
			return -1
		case 1:
			return 1
		}
	case 2:
		switch k {
		case 0:
			return -2 + 2*t
		case 1:
			return 2 - 4*t
		case 2:
			return 2 * t
		}
	case 3:
		switch k {
		case 0:
			return -3 + 6*t - 3*t*t
		case 1:
			return 3 - 12*t + 9*t*t
		case 2:
			return 6*t - 9*t*t
		case 3:
			return 3 * t * t
		}
	}
	panic(fmt.Sprintf("srf: BernsteinDerivative(%d, %d): unsupported degree or index", k, deg))
}

// basis extends Bernstein to degree zero, which surfaces use for a
// direction with a single row of control points.
func basis(k, deg int, t float64) float64 {
	if deg == 0 {
		if k != 0 {
			panic(fmt.Sprintf("srf: basis(%d, 0): index out of range", k))
		}
		return 1
	}
	return Bernstein(k, deg, t)
}

func basisDerivative(k, deg int, t float64) float64 {
	if deg == 0 {
		return 0
	}
	return BernsteinDerivative(k, deg, t)
}
