package hex

import (
	"iter"
	"math/rand"
)

// Unbounded as a last ring makes a spiral infinite. Callers must bound
// consumption themselves.
const Unbounded = -1

// Spiral walks consecutive rings around a center, one ring at a time.
// Rings are produced lazily: only the ring currently being emitted is
// materialised.
type Spiral struct {
	center Coord
	first  int
	last   int
	rng    *rand.Rand

	radius int
	ring   []Coord
	pos    int
	done   bool
}

// NewSpiral returns a spiral over rings first..last inclusive. last may be
// Unbounded.
func NewSpiral(center Coord, first, last int) *Spiral {
	return newSpiral(center, first, last, nil)
}

// NewShuffledSpiral is NewSpiral with each ring's members permuted by rng
// before emission.
func NewShuffledSpiral(center Coord, first, last int, rng *rand.Rand) *Spiral {
	return newSpiral(center, first, last, rng)
}

func newSpiral(center Coord, first, last int, rng *rand.Rand) *Spiral {
	if first < 0 {
		first = 0
	}
	s := &Spiral{center: center, first: first, last: last, rng: rng}
	s.Reset()
	return s
}

// Reset rewinds the spiral to its first ring.
func (s *Spiral) Reset() {
	s.radius = s.first
	s.done = s.last != Unbounded && s.first > s.last
	s.ring = nil
	s.pos = 0
	if !s.done {
		s.load()
	}
}

// Next returns the next coordinate, or false once the last ring is exhausted.
func (s *Spiral) Next() (Coord, bool) {
	if s.done {
		return Coord{}, false
	}
	if s.pos >= len(s.ring) {
		if s.last != Unbounded && s.radius >= s.last {
			s.done = true
			return Coord{}, false
		}
		s.radius++
		s.load()
	}
	c := s.ring[s.pos]
	s.pos++
	return c, true
}

// Radius returns the ring the most recently emitted coordinate belongs to.
func (s *Spiral) Radius() int {
	return s.radius
}

// All returns a restartable sequence over the spiral. Each range starts
// from the first ring.
func (s *Spiral) All() iter.Seq[Coord] {
	return func(yield func(Coord) bool) {
		s.Reset()
		for {
			c, ok := s.Next()
			if !ok || !yield(c) {
				return
			}
		}
	}
}

// Take returns at most n further coordinates.
func (s *Spiral) Take(n int) []Coord {
	out := make([]Coord, 0, n)
	for len(out) < n {
		c, ok := s.Next()
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out
}

func (s *Spiral) load() {
	s.ring = appendRing(s.ring[:0], s.center, s.radius)
	s.pos = 0
	if s.rng != nil {
		s.rng.Shuffle(len(s.ring), func(i, j int) {
			s.ring[i], s.ring[j] = s.ring[j], s.ring[i]
		})
	}
}

// Ring returns the coordinates at exactly radius steps from center.
// Radius 0 yields the center alone.
func Ring(center Coord, radius int) iter.Seq[Coord] {
	return func(yield func(Coord) bool) {
		for _, c := range RingSlice(center, radius) {
			if !yield(c) {
				return
			}
		}
	}
}

// RingSlice materialises Ring(center, radius).
func RingSlice(center Coord, radius int) []Coord {
	return appendRing(nil, center, radius)
}

// ShuffledRing returns the ring in an order permuted by rng.
func ShuffledRing(center Coord, radius int, rng *rand.Rand) []Coord {
	ring := RingSlice(center, radius)
	rng.Shuffle(len(ring), func(i, j int) {
		ring[i], ring[j] = ring[j], ring[i]
	})
	return ring
}

// RingSize returns the number of cells in a ring of the given radius.
func RingSize(radius int) int {
	if radius <= 0 {
		return 1
	}
	return 6 * radius
}

// appendRing walks the ring starting radius steps in direction 4, then
// along each of the six directions in turn.
func appendRing(dst []Coord, center Coord, radius int) []Coord {
	if radius <= 0 {
		return append(dst, center)
	}
	c := center.Add(Directions[4].Scale(radius))
	for side := 0; side < 6; side++ {
		for step := 0; step < radius; step++ {
			dst = append(dst, c)
			c = c.Add(Directions[side])
		}
	}
	return dst
}
