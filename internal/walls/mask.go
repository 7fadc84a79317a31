// Package walls classifies a hex cell's six sides into one of fourteen wall
// tile types plus a rotation.
package walls

import "strings"

// Sides is the number of edges of a hex cell.
const Sides = 6

const fullMask Mask = 1<<Sides - 1

// Mask has bit i set when the neighbor in hex.Directions[i] is not a known
// cell, meaning that side needs a wall.
type Mask uint8

// MaskFromSides builds a mask from one flag per side.
func MaskFromSides(open [Sides]bool) Mask {
	var m Mask
	for i, o := range open {
		if o {
			m |= 1 << i
		}
	}
	return m
}

// Sides expands the mask to one flag per side.
func (m Mask) Sides() [Sides]bool {
	var out [Sides]bool
	for i := range out {
		out[i] = m.Open(i)
	}
	return out
}

// Open reports whether side i faces unclaimed space.
func (m Mask) Open(i int) bool {
	return m&(1<<(((i%Sides)+Sides)%Sides)) != 0
}

// Count returns the number of open sides.
func (m Mask) Count() int {
	n := 0
	for i := 0; i < Sides; i++ {
		if m.Open(i) {
			n++
		}
	}
	return n
}

// Rotate shifts the mask cyclically so that side i moves to side i+steps.
func (m Mask) Rotate(steps int) Mask {
	k := uint(((steps % Sides) + Sides) % Sides)
	m &= fullMask
	return ((m << k) | (m >> (Sides - k))) & fullMask
}

// String renders the mask side 0 first, '1' for open.
func (m Mask) String() string {
	var b strings.Builder
	for i := 0; i < Sides; i++ {
		if m.Open(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
