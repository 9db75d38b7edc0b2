package savefile

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/chazu/brep/pkg/srf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// ErrVersion is returned for files written by a newer format version.
var ErrVersion = errors.New("savefile: unsupported version")

// parser holds the block being read.
type parser struct {
	sh      *srf.Shell
	srf     *srf.Surface
	crv     *srf.SCurve
	ctrls   int
	version int
}

// fields is the argument list of one command, consumed left to right.
type fields struct {
	args []string
	err  error
}

func (f *fields) next() string {
	if f.err != nil {
		return ""
	}
	if len(f.args) == 0 {
		f.err = errors.New("too few fields")
		return ""
	}
	s := f.args[0]
	f.args = f.args[1:]
	return s
}

func (f *fields) float() float64 {
	s := f.next()
	if f.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f.err = errors.Wrapf(err, "bad number %q", s)
	}
	return v
}

func (f *fields) vec() v3.Vec {
	return v3.Vec{X: f.float(), Y: f.float(), Z: f.float()}
}

func (f *fields) uint() uint32 {
	s := f.next()
	if f.err != nil {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		f.err = errors.Wrapf(err, "bad integer %q", s)
	}
	return uint32(v)
}

func (f *fields) bool() bool {
	switch s := f.next(); s {
	case "0", "":
		return false
	case "1":
		return true
	default:
		f.err = errors.Errorf("bad flag %q", s)
		return false
	}
}

func (f *fields) keyword(k string) {
	if s := f.next(); f.err == nil && s != k {
		f.err = errors.Errorf("expected %q, got %q", k, s)
	}
}

func (f *fields) done() error {
	if f.err == nil && len(f.args) > 0 {
		f.err = errors.Errorf("unexpected %q", strings.Join(f.args, " "))
	}
	return f.err
}

// Read parses a shell written by Write. Errors carry the offending line
// number.
func Read(r io.Reader) (*srf.Shell, error) {
	p := &parser{sh: &srf.Shell{}}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := p.line(line); err != nil {
			return nil, errors.Wrapf(err, "line %d", n)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "savefile")
	}
	if p.srf != nil || p.crv != nil {
		return nil, errors.Errorf("line %d: unterminated block", n)
	}
	if err := p.check(); err != nil {
		return nil, err
	}
	return p.sh, nil
}

func (p *parser) line(line string) error {
	cmd, rest, _ := strings.Cut(line, " ")
	if k, v, ok := strings.Cut(line, "="); ok && !strings.Contains(k, " ") {
		return p.header(k, v)
	}
	f := &fields{args: strings.Fields(rest)}
	switch cmd {
	case "Surface":
		if p.srf != nil || p.crv != nil {
			return errors.New("Surface inside another block")
		}
		s := &srf.Surface{}
		s.H = srf.HSurface(f.uint())
		s.Color = f.uint()
		s.Face = f.uint()
		s.DegM = int(f.uint())
		s.DegN = int(f.uint())
		if err := f.done(); err != nil {
			return err
		}
		if s.H == 0 || s.DegM > 3 || s.DegN > 3 {
			return errors.Errorf("bad surface %d of degree %d x %d", s.H, s.DegM, s.DegN)
		}
		p.srf = s

	case "SCtrl":
		if p.srf == nil {
			return errors.New("SCtrl outside a surface")
		}
		i, j := int(f.uint()), int(f.uint())
		c := f.vec()
		f.keyword("Weight")
		w := f.float()
		if err := f.done(); err != nil {
			return err
		}
		if i > p.srf.DegM || j > p.srf.DegN {
			return errors.Errorf("control point (%d, %d) beyond degree %d x %d", i, j, p.srf.DegM, p.srf.DegN)
		}
		p.srf.Ctrl[i][j] = c
		p.srf.Weight[i][j] = w

	case "TrimBy":
		if p.srf == nil {
			return errors.New("TrimBy outside a surface")
		}
		tb := srf.TrimBy{Curve: srf.HCurve(f.uint()), Backwards: f.bool()}
		tb.Start, tb.Finish, tb.Out = f.vec(), f.vec(), f.vec()
		if err := f.done(); err != nil {
			return err
		}
		p.srf.Trim = append(p.srf.Trim, tb)

	case "AddSurface":
		if p.srf == nil {
			return errors.New("AddSurface without Surface")
		}
		if p.sh.Surface.Find(p.srf.H) != nil {
			return errors.Errorf("duplicate surface %d", p.srf.H)
		}
		p.sh.Surface.AddWithHandle(p.srf.H, *p.srf)
		p.srf = nil

	case "Curve":
		if p.srf != nil || p.crv != nil {
			return errors.New("Curve inside another block")
		}
		c := &srf.SCurve{}
		c.H = srf.HCurve(f.uint())
		exact := f.bool()
		c.Exact.Deg = int(f.uint())
		c.SrfA = srf.HSurface(f.uint())
		c.SrfB = srf.HSurface(f.uint())
		if err := f.done(); err != nil {
			return err
		}
		if c.H == 0 || exact != (c.Exact.Deg != 0) || c.Exact.Deg > 3 {
			return errors.Errorf("bad curve %d of degree %d", c.H, c.Exact.Deg)
		}
		p.crv, p.ctrls = c, 0

	case "CCtrl":
		if p.crv == nil {
			return errors.New("CCtrl outside a curve")
		}
		c := f.vec()
		f.keyword("Weight")
		w := f.float()
		if err := f.done(); err != nil {
			return err
		}
		if p.ctrls > p.crv.Exact.Deg || len(p.crv.Pts) > 0 {
			return errors.Errorf("unexpected control point for curve %d", p.crv.H)
		}
		p.crv.Exact.Ctrl[p.ctrls] = c
		p.crv.Exact.Weight[p.ctrls] = w
		p.ctrls++

	case "CurvePt":
		if p.crv == nil {
			return errors.New("CurvePt outside a curve")
		}
		pt := f.vec()
		if err := f.done(); err != nil {
			return err
		}
		p.crv.Pts = append(p.crv.Pts, pt)

	case "AddCurve":
		if p.crv == nil {
			return errors.New("AddCurve without Curve")
		}
		if p.crv.IsExact() && p.ctrls != p.crv.Exact.Deg+1 {
			return errors.Errorf("curve %d has %d control points, want %d", p.crv.H, p.ctrls, p.crv.Exact.Deg+1)
		}
		if len(p.crv.Pts) < 2 {
			return errors.Errorf("curve %d has %d points", p.crv.H, len(p.crv.Pts))
		}
		if p.sh.Curve.Find(p.crv.H) != nil {
			return errors.Errorf("duplicate curve %d", p.crv.H)
		}
		p.sh.Curve.AddWithHandle(p.crv.H, *p.crv)
		p.crv = nil

	default:
		return errors.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (p *parser) header(k, v string) error {
	if k != versionKey {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrapf(err, "bad %s", versionKey)
	}
	if n < 1 || n > Version {
		return errors.Wrapf(ErrVersion, "version %d", n)
	}
	p.version = n
	return nil
}

// check verifies that every handle the shell refers to exists.
func (p *parser) check() error {
	if p.version == 0 {
		return errors.Errorf("missing %s header", versionKey)
	}
	var err error
	p.sh.Surface.Each(func(h srf.HSurface, s *srf.Surface) {
		for _, tb := range s.Trim {
			if err == nil && p.sh.Curve.Find(tb.Curve) == nil {
				err = errors.Errorf("surface %d is trimmed by missing curve %d", h, tb.Curve)
			}
		}
	})
	p.sh.Curve.Each(func(h srf.HCurve, c *srf.SCurve) {
		for _, s := range []srf.HSurface{c.SrfA, c.SrfB} {
			if err == nil && s != 0 && p.sh.Surface.Find(s) == nil {
				err = errors.Errorf("curve %d borders missing surface %d", h, s)
			}
		}
	})
	return err
}
