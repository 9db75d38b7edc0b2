package srf

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

// approx compares floats, including the fields of v3.Vec, to within 1e-9.
var approx = cmpopts.EquateApprox(0, 1e-9)

func near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func vec(x, y, z float64) v3.Vec {
	return v3.Vec{X: x, Y: y, Z: z}
}

// rectangle returns the counter-clockwise rectangle [x0,x1]x[y0,y1] in the
// plane z.
func rectangle(x0, y0, x1, y1, z float64) *BezierList {
	var l BezierList
	l.Add(
		BezierFrom(vec(x0, y0, z), vec(x1, y0, z)),
		BezierFrom(vec(x1, y0, z), vec(x1, y1, z)),
		BezierFrom(vec(x1, y1, z), vec(x0, y1, z)),
		BezierFrom(vec(x0, y1, z), vec(x0, y0, z)),
	)
	return &l
}

// circle returns a counter-clockwise circle in the plane z, as four arcs.
func circle(cx, cy, r, z float64) *BezierList {
	c := vec(cx, cy, z)
	pts := []v3.Vec{vec(cx+r, cy, z), vec(cx, cy+r, z), vec(cx-r, cy, z), vec(cx, cy-r, z)}
	var l BezierList
	for i := range pts {
		l.Add(ArcFrom(c, pts[i], pts[(i+1)%4]))
	}
	return &l
}

// box returns the shell of the axis-aligned box between min and max.
func box(t *testing.T, min, max v3.Vec) *Shell {
	t.Helper()
	sh, err := ShellFromExtrusionOf(rectangle(min.X, min.Y, max.X, max.Y, min.Z), v3.Vec{}, vec(0, 0, max.Z-min.Z))
	if err != nil {
		t.Fatalf("box: %v", err)
	}
	return sh
}

// curveCounts returns the number of exact and of polyline-only curves.
func curveCounts(sh *Shell) (exact, pwl int) {
	sh.Curve.Each(func(_ HCurve, c *SCurve) {
		if c.IsExact() {
			exact++
		} else {
			pwl++
		}
	})
	return exact, pwl
}
