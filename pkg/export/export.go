// Package export writes meshes and shells to interchange formats: binary
// STL through sdfx and DXF edge drawings through yofu/dxf.
package export

import (
	"fmt"

	"github.com/chazu/brep/pkg/kernel"
	"github.com/chazu/brep/pkg/srf"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
)

// Layer names used by WriteDXF.
const (
	LayerExact        = "EXACT"
	LayerIntersection = "INTERSECTION"
)

// WriteSTL writes m to path as binary STL.
func WriteSTL(path string, m *kernel.Mesh) error {
	if m.IsEmpty() {
		return fmt.Errorf("export: %s: empty mesh", path)
	}
	tris := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		tris = append(tris, &sdf.Triangle3{vec(a), vec(b), vec(c)})
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// WriteDXF draws every linearized curve of sh as 3D lines. Curves with an
// exact form go on LayerExact; intersection curves known only as
// polylines go on LayerIntersection.
func WriteDXF(path string, sh *srf.Shell) error {
	d := dxf.NewDrawing()
	layers := []struct {
		name  string
		color color.ColorNumber
		exact bool
	}{
		{LayerExact, dxf.DefaultColor, true},
		{LayerIntersection, color.Red, false},
	}
	var err error
	for _, l := range layers {
		if _, err = d.AddLayer(l.name, l.color, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("export: dxf layer %s: %w", l.name, err)
		}
		sh.Curve.Each(func(h srf.HCurve, c *srf.SCurve) {
			if err != nil || c.IsExact() != l.exact {
				return
			}
			for i := 0; i+1 < len(c.Pts); i++ {
				p, q := c.Pts[i], c.Pts[i+1]
				if _, err = d.Line(p.X, p.Y, p.Z, q.X, q.Y, q.Z); err != nil {
					err = fmt.Errorf("curve %d: %w", h, err)
					return
				}
			}
		})
		if err != nil {
			return fmt.Errorf("export: dxf: %w", err)
		}
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func vec(p [3]float64) v3.Vec {
	return v3.Vec{X: p[0], Y: p[1], Z: p[2]}
}
