package world

import "math"

// Vec is a continuous arena position.
type Vec struct {
	X, Y float64
}

// Add returns v+o.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// Scale returns v*s.
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the distance between v and o.
func (v Vec) Dist(o Vec) float64 { return v.Sub(o).Len() }

// Cell returns the tile coordinates containing v.
func (v Vec) Cell() (int, int) {
	return int(math.Floor(v.X)), int(math.Floor(v.Y))
}

// MoveToward steps from v toward target by at most step, stopping short at
// distance stop.
func (v Vec) MoveToward(target Vec, step, stop float64) Vec {
	d := target.Sub(v)
	dist := d.Len()
	if dist <= stop || step <= 0 {
		return v
	}
	travel := math.Min(step, dist-stop)
	return v.Add(d.Scale(travel / dist))
}

// Within reports whether v is at most r away from o.
func (v Vec) Within(o Vec, r float64) bool {
	return v.Dist(o) <= r
}
