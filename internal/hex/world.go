package hex

import "math"

// Vec3 is a world-space position. Y is up; the grid lies on the XZ plane.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PlanarDistance returns the distance between a and b ignoring height.
func (a Vec3) PlanarDistance(b Vec3) float64 {
	return math.Hypot(a.X-b.X, a.Z-b.Z)
}

// Pointy-top layout. inverse is the matrix inverse of forward.
var (
	forward = [4]float64{math.Sqrt(3), math.Sqrt(3) / 2, 0, 3.0 / 2}
	inverse = [4]float64{math.Sqrt(3) / 3, -1.0 / 3, 0, 2.0 / 3}
)

// ToWorld returns the center of the cell in world space at the given height.
func (c Coord) ToWorld(height, tileSize float64) Vec3 {
	q, r := float64(c.Q), float64(c.R)
	return Vec3{
		X: (forward[0]*q + forward[1]*r) * tileSize,
		Y: height,
		Z: (forward[2]*q + forward[3]*r) * tileSize,
	}
}

// FromWorld returns the cell containing the world-space position.
func FromWorld(pos Vec3, tileSize float64) Coord {
	x := pos.X / tileSize
	z := pos.Z / tileSize
	return round(inverse[0]*x+inverse[1]*z, inverse[2]*x+inverse[3]*z)
}
