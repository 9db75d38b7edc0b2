package srf

import "testing"

func TestBernsteinPartitionOfUnity(t *testing.T) {
	for deg := 1; deg <= 3; deg++ {
		for _, x := range []float64{0, 0.1, 0.25, 0.5, 0.9, 1} {
			sum, dsum := 0.0, 0.0
			for k := 0; k <= deg; k++ {
				sum += Bernstein(k, deg, x)
				dsum += BernsteinDerivative(k, deg, x)
			}
			if !near(sum, 1, 1e-12) {
				t.Errorf("deg %d t %v: sum = %v, want 1", deg, x, sum)
			}
			if !near(dsum, 0, 1e-12) {
				t.Errorf("deg %d t %v: derivative sum = %v, want 0", deg, x, dsum)
			}
		}
	}
}

func TestBernsteinDerivativeMatchesDifference(t *testing.T) {
	const h = 1e-6
	for deg := 1; deg <= 3; deg++ {
		for k := 0; k <= deg; k++ {
			for _, x := range []float64{0.2, 0.5, 0.7} {
				fd := (Bernstein(k, deg, x+h) - Bernstein(k, deg, x-h)) / (2 * h)
				if got := BernsteinDerivative(k, deg, x); !near(got, fd, 1e-6) {
					t.Errorf("B'(%d,%d,%v) = %v, want %v", k, deg, x, got, fd)
				}
			}
		}
	}
}

func TestBernsteinPanics(t *testing.T) {
	tests := []struct {
		name   string
		k, deg int
	}{
		{"degree zero", 0, 0},
		{"degree four", 0, 4},
		{"index past degree", 3, 2},
		{"negative index", -1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("Bernstein(%d, %d) did not panic", tt.k, tt.deg)
				}
			}()
			Bernstein(tt.k, tt.deg, 0.5)
		})
	}
}

func TestBasisDegreeZero(t *testing.T) {
	if got := basis(0, 0, 0.3); got != 1 {
		t.Errorf("basis(0, 0) = %v, want 1", got)
	}
	if got := basisDerivative(0, 0, 0.3); got != 0 {
		t.Errorf("basisDerivative(0, 0) = %v, want 0", got)
	}
}
