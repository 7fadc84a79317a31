// Package hex provides axial coordinates on an unbounded hexagonal grid,
// ring and spiral iteration, and grid/world transforms.
package hex

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNonCanonical is returned when a cube triple does not sum to zero.
var ErrNonCanonical = errors.New("hex: cube coordinate must satisfy q+r+s=0")

// Coord is a position on the hex grid in axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type Coord struct {
	Q int `yaml:"q" json:"q"`
	R int `yaml:"r" json:"r"`
}

// Origin is the coordinate (0, 0).
var Origin = Coord{}

// Directions are the six unit offsets, counter-clockwise starting east.
// Wall masks index sides in this order, so it must never be reordered.
var Directions = [6]Coord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// New creates a coordinate from axial components.
func New(q, r int) Coord {
	return Coord{Q: q, R: r}
}

// NewCube creates a coordinate from a cube triple, rejecting triples that
// do not lie on the q+r+s=0 plane.
func NewCube(q, r, s int) (Coord, error) {
	if q+r+s != 0 {
		return Coord{}, fmt.Errorf("%w: (%d, %d, %d)", ErrNonCanonical, q, r, s)
	}
	return Coord{Q: q, R: r}, nil
}

// S returns the implicit third cube coordinate.
func (c Coord) S() int {
	return -c.Q - c.R
}

// Add returns c + o.
func (c Coord) Add(o Coord) Coord {
	return Coord{Q: c.Q + o.Q, R: c.R + o.R}
}

// Sub returns c - o.
func (c Coord) Sub(o Coord) Coord {
	return Coord{Q: c.Q - o.Q, R: c.R - o.R}
}

// Scale returns c * k.
func (c Coord) Scale(k int) Coord {
	return Coord{Q: c.Q * k, R: c.R * k}
}

// Length returns the hex distance from the origin.
func (c Coord) Length() int {
	return (abs(c.Q) + abs(c.R) + abs(c.S())) / 2
}

// Distance returns the hex distance between c and o.
func (c Coord) Distance(o Coord) int {
	return c.Sub(o).Length()
}

// Neighbor returns the adjacent coordinate in direction i (taken mod 6).
func (c Coord) Neighbor(i int) Coord {
	return c.Add(Directions[((i%6)+6)%6])
}

// Neighbors returns the six adjacent coordinates in Directions order.
func (c Coord) Neighbors() [6]Coord {
	var result [6]Coord
	for i, dir := range Directions {
		result[i] = c.Add(dir)
	}
	return result
}

// Less orders coordinates by R, then Q. Used wherever output must be
// independent of map iteration order.
func (c Coord) Less(o Coord) bool {
	if c.R != o.R {
		return c.R < o.R
	}
	return c.Q < o.Q
}

// String returns the coordinate as "q,r".
func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.Q, c.R)
}

// Parse reads a coordinate written as "q,r" or "q:r". Nothing else may
// follow the second number.
func Parse(s string) (Coord, error) {
	qs, rs, ok := strings.Cut(s, ",")
	if !ok {
		qs, rs, ok = strings.Cut(s, ":")
	}
	if !ok {
		return Coord{}, fmt.Errorf("hex: invalid coordinate %q", s)
	}
	q, err := strconv.Atoi(qs)
	if err != nil {
		return Coord{}, fmt.Errorf("hex: invalid coordinate %q", s)
	}
	r, err := strconv.Atoi(rs)
	if err != nil {
		return Coord{}, fmt.Errorf("hex: invalid coordinate %q", s)
	}
	return Coord{Q: q, R: r}, nil
}

// round snaps fractional cube coordinates to the nearest hex, resetting the
// component with the largest rounding error so the triple stays canonical.
func round(fq, fr float64) Coord {
	fs := -fq - fr
	q := math.Round(fq)
	r := math.Round(fr)
	s := math.Round(fs)

	dq := math.Abs(q - fq)
	dr := math.Abs(r - fr)
	ds := math.Abs(s - fs)

	switch {
	case dq > dr && dq > ds:
		q = -r - s
	case dr > ds:
		r = -q - s
	}
	return Coord{Q: int(q), R: int(r)}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
