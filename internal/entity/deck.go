package entity

import "math/rand"

// DeckSize - 12 tile identities with four copies each.
const DeckSize = (NumberedRanks + HonorRanks) * CopiesPerTile

// Deck is an ordered sequence of tiles, permuted once at creation.
type Deck struct {
	Tiles []Tile `json:"tiles"`
}

// NewDeck - builds the 48-tile shoe and shuffles it uniformly.
func NewDeck() *Deck {
	tiles := make([]Tile, 0, DeckSize)

	for _, tile := range AllTiles() {
		for copies := 0; copies < CopiesPerTile; copies++ {
			tiles = append(tiles, tile)
		}
	}

	rand.Shuffle(len(tiles), func(i, j int) { //nolint: gosec // shuffle quality, not crypto
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})

	return &Deck{Tiles: tiles}
}

// Draw - removes and returns the tail tile.
// An empty deck yields ok=false, never an error.
func (that *Deck) Draw() (Tile, bool) {
	if len(that.Tiles) == 0 {
		return Tile{}, false
	}

	tile := that.Tiles[len(that.Tiles)-1]
	that.Tiles = that.Tiles[:len(that.Tiles)-1]

	return tile, true
}

func (that *Deck) Len() int {
	return len(that.Tiles)
}

func (that *Deck) IsEmpty() bool {
	return len(that.Tiles) == 0
}
