package vmf

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Floats parses a whitespace separated list of numbers, as used by
// dispinfo rows.
func Floats(s string) ([]float64, error) {
	fields := strings.Fields(s)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("vmf: number %q: %w", f, err)
		}
		out[i] = v
	}
	return out, nil
}

// Vec3s parses a plain "x y z x y z ..." list into vectors.
func Vec3s(s string) ([]r3.Vec, error) {
	f, err := Floats(s)
	if err != nil {
		return nil, err
	}
	if len(f)%3 != 0 {
		return nil, fmt.Errorf("vmf: %d numbers is not a list of vectors", len(f))
	}
	out := make([]r3.Vec, len(f)/3)
	for i := range out {
		out[i] = r3.Vec{X: f[3*i], Y: f[3*i+1], Z: f[3*i+2]}
	}
	return out, nil
}

// Triangle parses a side plane: "(x y z) (x y z) (x y z)".
func Triangle(s string) ([3]r3.Vec, error) {
	var tri [3]r3.Vec
	rest := s
	for i := range tri {
		open := strings.IndexByte(rest, '(')
		end := strings.IndexByte(rest, ')')
		if open < 0 || end < open {
			return tri, fmt.Errorf("vmf: plane %q: expected 3 points", s)
		}
		v, err := Vec3s(rest[open+1 : end])
		if err != nil || len(v) != 1 {
			return tri, fmt.Errorf("vmf: plane %q: bad point %q", s, rest[open+1:end])
		}
		tri[i] = v[0]
		rest = rest[end+1:]
	}
	if strings.TrimSpace(rest) != "" {
		return tri, fmt.Errorf("vmf: plane %q: trailing data", s)
	}
	return tri, nil
}

// BracketVec parses "[x y z]".
func BracketVec(s string) (r3.Vec, error) {
	inner, ok := bracketed(s)
	if !ok {
		return r3.Vec{}, fmt.Errorf("vmf: vector %q: missing brackets", s)
	}
	v, err := Vec3s(inner)
	if err != nil || len(v) != 1 {
		return r3.Vec{}, fmt.Errorf("vmf: vector %q: expected 3 numbers", s)
	}
	return v[0], nil
}

// Axis parses a texture axis: "[x y z offset] scale".
func Axis(s string) (dir r3.Vec, offset, scale float64, err error) {
	inner, ok := bracketed(s)
	if !ok {
		return dir, 0, 0, fmt.Errorf("vmf: axis %q: missing brackets", s)
	}
	f, err := Floats(inner)
	if err != nil || len(f) != 4 {
		return dir, 0, 0, fmt.Errorf("vmf: axis %q: expected [x y z offset]", s)
	}
	tail := strings.TrimSpace(s[strings.IndexByte(s, ']')+1:])
	scale, err = strconv.ParseFloat(tail, 64)
	if err != nil {
		return dir, 0, 0, fmt.Errorf("vmf: axis %q: scale: %w", s, err)
	}
	return r3.Vec{X: f[0], Y: f[1], Z: f[2]}, f[3], scale, nil
}

func bracketed(s string) (string, bool) {
	open := strings.IndexByte(s, '[')
	end := strings.IndexByte(s, ']')
	if open < 0 || end < open {
		return "", false
	}
	return s[open+1 : end], true
}
