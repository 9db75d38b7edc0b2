// Package savefile stores shells as line-oriented text.
//
// A file starts with key=value header lines and continues with one block
// per surface and one per curve:
//
//	Shell.Version=1
//	Surface h color face degm degn
//	SCtrl i j x y z Weight w
//	TrimBy curve backwards sx sy sz fx fy fz ox oy oz
//	AddSurface
//	Curve h isExact deg srfA srfB
//	CCtrl x y z Weight w
//	CurvePt x y z
//	AddCurve
//
// Floats are written in their shortest exact form, so reading a written
// shell reproduces every coordinate bit for bit. Handles are preserved.
package savefile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/chazu/brep/pkg/srf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// Version is the format version written by Write.
const Version = 1

const versionKey = "Shell.Version"

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func vtoa(v v3.Vec) string {
	return ftoa(v.X) + " " + ftoa(v.Y) + " " + ftoa(v.Z)
}

func btoa(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Write stores sh to w.
func Write(w io.Writer, sh *srf.Shell) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s=%d\n", versionKey, Version)
	fmt.Fprintf(bw, "Shell.Surfaces=%d\n", sh.Surface.Len())
	fmt.Fprintf(bw, "Shell.Curves=%d\n\n", sh.Curve.Len())

	sh.Surface.Each(func(h srf.HSurface, s *srf.Surface) {
		fmt.Fprintf(bw, "Surface %d %d %d %d %d\n", h, s.Color, s.Face, s.DegM, s.DegN)
		for i := 0; i <= s.DegM; i++ {
			for j := 0; j <= s.DegN; j++ {
				fmt.Fprintf(bw, "SCtrl %d %d %s Weight %s\n", i, j, vtoa(s.Ctrl[i][j]), ftoa(s.Weight[i][j]))
			}
		}
		for _, tb := range s.Trim {
			fmt.Fprintf(bw, "TrimBy %d %s %s %s %s\n", tb.Curve, btoa(tb.Backwards), vtoa(tb.Start), vtoa(tb.Finish), vtoa(tb.Out))
		}
		fmt.Fprint(bw, "AddSurface\n\n")
	})
	sh.Curve.Each(func(h srf.HCurve, c *srf.SCurve) {
		fmt.Fprintf(bw, "Curve %d %s %d %d %d\n", h, btoa(c.IsExact()), c.Exact.Deg, c.SrfA, c.SrfB)
		for i := 0; c.IsExact() && i <= c.Exact.Deg; i++ {
			fmt.Fprintf(bw, "CCtrl %s Weight %s\n", vtoa(c.Exact.Ctrl[i]), ftoa(c.Exact.Weight[i]))
		}
		for _, p := range c.Pts {
			fmt.Fprintf(bw, "CurvePt %s\n", vtoa(p))
		}
		fmt.Fprint(bw, "AddCurve\n\n")
	})
	return bw.Flush()
}

// Save writes sh to the file at path.
func Save(path string, sh *srf.Shell) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("savefile: %w", err)
	}
	if err := Write(f, sh); err != nil {
		f.Close()
		return fmt.Errorf("savefile: writing %s: %w", path, err)
	}
	return f.Close()
}

// Load reads the shell stored in the file at path.
func Load(path string) (*srf.Shell, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("savefile: %w", err)
	}
	defer f.Close()
	sh, err := Read(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return sh, nil
}
