// Package world provides the encounter arena: tiles, zones and positions.
package world

// Tile represents a single arena tile.
type Tile rune

const (
	// TileWall is an impassable wall or pillar.
	TileWall Tile = '#'
	// TileFloor is walkable ground.
	TileFloor Tile = '.'
	// TileShallows is walkable water that marks the combat ring.
	TileShallows Tile = '~'
)

// IsPassable returns true if the tile can be walked on.
func (t Tile) IsPassable() bool {
	return t == TileFloor || t == TileShallows
}

// Rune returns the tile's display character.
func (t Tile) Rune() rune {
	return rune(t)
}
