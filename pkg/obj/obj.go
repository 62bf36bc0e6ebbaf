// Package obj reads Wavefront .obj geometry: positions, normals, texture
// coordinates, polygon faces and their object and group spans. Materials and
// free-form geometry are ignored.
package obj

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Missing marks a face corner without a normal or texture coordinate.
const Missing = -1

// ErrNoFaces is returned for a file that defines no faces.
var ErrNoFaces = errors.New("obj: no faces")

// SyntaxError reports a malformed line (1-based).
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("obj: line %d: %s", e.Line, e.Msg)
}

// Corner indexes the position, texture coordinate and normal of one face
// corner. Indices are 0-based; TexCoord and Normal may be Missing.
type Corner struct {
	Position int
	TexCoord int
	Normal   int
}

// Face is a polygon of at least three corners, wound clockwise seen from its
// front like brush faces.
type Face []Corner

// Span names a run of faces started by an "o" or "g" line.
type Span struct {
	Name  string
	Start int
	Count int
}

// Model is a decoded .obj file.
type Model struct {
	Name      string
	Positions []r3.Vec
	Normals   []r3.Vec
	TexCoords [][2]float64
	Faces     []Face
	Objects   []Span
	Groups    []Span
}

// ParseFile reads the .obj file at path. The model is named after the file.
func ParseFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, filepath.Base(path))
}

// Parse reads .obj text.
func Parse(r io.Reader, name string) (*Model, error) {
	d := &decoder{m: &Model{Name: name}}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		d.line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if err := d.parseLine(fields[0], fields[1:]); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(d.m.Faces) == 0 {
		return nil, ErrNoFaces
	}
	d.close(&d.m.Objects)
	d.close(&d.m.Groups)
	return d.m, nil
}

type decoder struct {
	m    *Model
	line int
}

func (d *decoder) errorf(format string, args ...any) error {
	return &SyntaxError{Line: d.line, Msg: fmt.Sprintf(format, args...)}
}

func (d *decoder) parseLine(kind string, args []string) error {
	switch kind {
	case "v":
		v, err := d.floats(kind, args, 3)
		if err != nil {
			return err
		}
		d.m.Positions = append(d.m.Positions, r3.Vec{X: v[0], Y: v[1], Z: v[2]})
	case "vn":
		v, err := d.floats(kind, args, 3)
		if err != nil {
			return err
		}
		d.m.Normals = append(d.m.Normals, r3.Vec{X: v[0], Y: v[1], Z: v[2]})
	case "vt":
		v, err := d.floats(kind, args, 2)
		if err != nil {
			return err
		}
		d.m.TexCoords = append(d.m.TexCoords, [2]float64{v[0], v[1]})
	case "f":
		return d.parseFace(args)
	case "o":
		d.open(&d.m.Objects, strings.Join(args, " "))
	case "g":
		d.open(&d.m.Groups, strings.Join(args, " "))
	}
	// mtllib, usemtl, s, l and friends carry nothing we draw
	return nil
}

func (d *decoder) floats(kind string, args []string, n int) ([]float64, error) {
	if len(args) < n {
		return nil, d.errorf("%q needs %d values, got %d", kind, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args[:n] {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, d.errorf("%q value %q: %v", kind, a, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseFace accepts v, v/vt, v//vn and v/vt/vn corners, with negative
// indices counting back from the latest element. Corners are reversed: .obj
// faces are counter-clockwise.
func (d *decoder) parseFace(args []string) error {
	if len(args) < 3 {
		return d.errorf("face with %d corners", len(args))
	}
	face := make(Face, len(args))
	for i, a := range args {
		parts := strings.Split(a, "/")
		if len(parts) > 3 {
			return d.errorf("face corner %q", a)
		}
		c := Corner{TexCoord: Missing, Normal: Missing}
		var err error
		if c.Position, err = d.index(parts[0], len(d.m.Positions), "position"); err != nil {
			return err
		}
		if len(parts) > 1 && parts[1] != "" {
			if c.TexCoord, err = d.index(parts[1], len(d.m.TexCoords), "texture coordinate"); err != nil {
				return err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if c.Normal, err = d.index(parts[2], len(d.m.Normals), "normal"); err != nil {
				return err
			}
		}
		face[len(args)-1-i] = c
	}
	d.m.Faces = append(d.m.Faces, face)
	return nil
}

func (d *decoder) index(s string, count int, what string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, d.errorf("%s index %q", what, s)
	}
	switch {
	case v > 0 && v <= count:
		return v - 1, nil
	case v < 0 && -v <= count:
		return count + v, nil
	}
	return 0, d.errorf("%s index %d out of range (%d defined)", what, v, count)
}

// open starts a new span at the next face, closing the current one.
func (d *decoder) open(spans *[]Span, name string) {
	d.close(spans)
	*spans = append(*spans, Span{Name: name, Start: len(d.m.Faces)})
}

func (d *decoder) close(spans *[]Span) {
	if len(*spans) == 0 {
		if len(d.m.Faces) > 0 {
			// faces before the first name belong to an unnamed span
			*spans = append(*spans, Span{Count: len(d.m.Faces)})
		}
		return
	}
	last := &(*spans)[len(*spans)-1]
	last.Count = len(d.m.Faces) - last.Start
}
