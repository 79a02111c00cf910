package world

import (
	"context"
	"math/rand"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/parley/internal/telemetry"
)

const (
	// Default arena dimensions
	DefaultWidth  = 48
	DefaultHeight = 16

	pillarCount = 6
	zoneSize    = 3
)

// Arena is the walkable space of one case.
type Arena struct {
	Width  int
	Height int
	Tiles  [][]Tile
	Zones  []Zone
	rng    *rand.Rand
}

// NewArena creates a walled arena with an open floor.
func NewArena(width, height int, rng *rand.Rand) *Arena {
	tiles := make([][]Tile, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
		for x := range tiles[y] {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				tiles[y][x] = TileWall
			} else {
				tiles[y][x] = TileFloor
			}
		}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Arena{
		Width:  width,
		Height: height,
		Tiles:  tiles,
		rng:    rng,
	}
}

// Generate scatters pillars, marks the combat shallows around center and
// places one zone per evidence name on non-overlapping floor.
func (a *Arena) Generate(ctx context.Context, center Vec, evidence []string) {
	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "arena.generate")
	defer span.End()

	cx, cy := center.Cell()
	for y := 1; y < a.Height-1; y++ {
		for x := 1; x < a.Width-1; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy*4 <= 36 {
				a.Tiles[y][x] = TileShallows
			}
		}
	}

	for i := 0; i < pillarCount; i++ {
		x := 2 + a.rng.Intn(max(1, a.Width-4))
		y := 2 + a.rng.Intn(max(1, a.Height-4))
		if a.Tiles[y][x] == TileFloor {
			a.Tiles[y][x] = TileWall
		}
	}

	a.Zones = a.Zones[:0]
	for _, name := range evidence {
		if zone, ok := a.placeZone(name); ok {
			a.Zones = append(a.Zones, zone)
		}
	}

	span.SetAttributes(
		attribute.Int("arena.width", a.Width),
		attribute.Int("arena.height", a.Height),
		attribute.Int("arena.zone_count", len(a.Zones)),
	)
}

// placeZone tries random floor positions until one does not overlap an existing zone.
func (a *Arena) placeZone(name string) (Zone, bool) {
	for attempt := 0; attempt < 100; attempt++ {
		z := Zone{
			Name:   name,
			X:      1 + a.rng.Intn(max(1, a.Width-zoneSize-2)),
			Y:      1 + a.rng.Intn(max(1, a.Height-zoneSize-2)),
			Width:  zoneSize,
			Height: zoneSize,
		}
		if a.zoneClear(z) {
			return z, true
		}
	}
	return Zone{}, false
}

func (a *Arena) zoneClear(z Zone) bool {
	for _, other := range a.Zones {
		if z.Intersects(other) {
			return false
		}
	}
	for y := z.Y; y < z.Y+z.Height; y++ {
		for x := z.X; x < z.X+z.Width; x++ {
			if a.GetTile(x, y) != TileFloor {
				return false
			}
		}
	}
	return true
}

// IsPassable returns true if the given position can be walked on.
func (a *Arena) IsPassable(p Vec) bool {
	x, y := p.Cell()
	return a.GetTile(x, y).IsPassable()
}

// GetTile returns the tile at the given cell.
func (a *Arena) GetTile(x, y int) Tile {
	if x < 0 || x >= a.Width || y < 0 || y >= a.Height {
		return TileWall
	}
	return a.Tiles[y][x]
}

// ZoneAt returns the zone containing p.
func (a *Arena) ZoneAt(p Vec) (Zone, bool) {
	for _, z := range a.Zones {
		if z.Contains(p) {
			return z, true
		}
	}
	return Zone{}, false
}

// Step moves from p toward p+delta, refusing moves into impassable tiles.
func (a *Arena) Step(p, delta Vec) Vec {
	next := p.Add(delta)
	if a.IsPassable(next) {
		return next
	}
	return p
}
