package world

// Zone is a named rectangular region of the arena, such as an evidence spot.
type Zone struct {
	Name          string
	X, Y          int // Top-left corner position
	Width, Height int
}

// Center returns the center of the zone as an arena position.
func (z Zone) Center() Vec {
	return Vec{float64(z.X) + float64(z.Width)/2, float64(z.Y) + float64(z.Height)/2}
}

// Contains returns true if the given position is inside the zone.
func (z Zone) Contains(p Vec) bool {
	x, y := p.Cell()
	return x >= z.X && x < z.X+z.Width && y >= z.Y && y < z.Y+z.Height
}

// Intersects returns true if this zone overlaps with another zone.
func (z Zone) Intersects(other Zone) bool {
	return z.X < other.X+other.Width &&
		z.X+z.Width > other.X &&
		z.Y < other.Y+other.Height &&
		z.Y+z.Height > other.Y
}
