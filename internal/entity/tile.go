package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tilematch-backend/internal/apperror"
)

const (
	KindNumbered = "numbered"
	KindHonor    = "honor"

	NumberedRanks = 9
	HonorRanks    = 3

	// CopiesPerTile - every tile identity exists four times in the deck.
	CopiesPerTile = 4
)

var honorNames = [HonorRanks]string{"A", "B", "C"}

// Tile is an immutable value object; two tiles with the same kind and rank
// are interchangeable. Equality is value equality.
type Tile struct {
	Kind string `json:"kind"`
	Rank int    `json:"rank"`
}

func NewNumberedTile(rank int) Tile {
	return Tile{Kind: KindNumbered, Rank: rank}
}

func NewHonorTile(rank int) Tile {
	return Tile{Kind: KindHonor, Rank: rank}
}

func (that Tile) IsNumbered() bool {
	return that.Kind == KindNumbered
}

func (that Tile) IsHonor() bool {
	return that.Kind == KindHonor
}

// ID - returns the stable wire identity, e.g. "numbered_7" or "honor_B".
func (that Tile) ID() string {
	if that.IsHonor() {
		return fmt.Sprintf("honor_%s", honorNames[that.Rank-1])
	}
	return fmt.Sprintf("numbered_%d", that.Rank)
}

// ParseTileID - resolves a wire identity back into a tile.
// Unknown identities are rejected before any state lookup.
func ParseTileID(id string) (Tile, error) {
	for _, tile := range AllTiles() {
		if tile.ID() == id {
			return tile, nil
		}
	}

	return Tile{}, fmt.Errorf("%w: %q", apperror.ErrUnknownTile, id)
}

// AllTiles - the 12 distinct tile identities.
func AllTiles() []Tile {
	tiles := make([]Tile, 0, NumberedRanks+HonorRanks)

	for rank := 1; rank <= NumberedRanks; rank++ {
		tiles = append(tiles, NewNumberedTile(rank))
	}

	for rank := 1; rank <= HonorRanks; rank++ {
		tiles = append(tiles, NewHonorTile(rank))
	}

	return tiles
}
