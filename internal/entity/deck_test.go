package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	t.Run("Holds exactly four copies of every identity", func(t *testing.T) {
		// Given: a freshly shuffled deck
		deck := NewDeck()

		// Then: it holds 48 tiles, four per identity
		require.Equal(t, DeckSize, deck.Len())

		counts := make(map[Tile]int)
		for _, tile := range deck.Tiles {
			counts[tile]++
		}

		require.Len(t, counts, NumberedRanks+HonorRanks)
		for tile, count := range counts {
			assert.Equal(t, CopiesPerTile, count, "identity %s", tile.ID())
		}
	})
}

func TestDeck_Draw(t *testing.T) {
	t.Run("Draws every tile exactly once", func(t *testing.T) {
		// Given: a fresh deck
		deck := NewDeck()

		// When: drawing until exhaustion
		counts := make(map[Tile]int)
		for i := 0; i < DeckSize; i++ {
			tile, ok := deck.Draw()
			require.True(t, ok, "draw %d", i)
			counts[tile]++
		}

		// Then: the deck is empty and the multiset was preserved
		assert.True(t, deck.IsEmpty())
		assert.Equal(t, 0, deck.Len())
		for tile, count := range counts {
			assert.Equal(t, CopiesPerTile, count, "identity %s", tile.ID())
		}
	})

	t.Run("Empty deck reports ok=false", func(t *testing.T) {
		// Given: an exhausted deck
		deck := &Deck{}

		// When: drawing again
		tile, ok := deck.Draw()

		// Then: no tile is produced and no panic occurs
		assert.False(t, ok)
		assert.Equal(t, Tile{}, tile)
	})

	t.Run("Draw removes from the tail", func(t *testing.T) {
		// Given: a deck with a known order
		deck := &Deck{Tiles: []Tile{NewNumberedTile(1), NewNumberedTile(2), NewNumberedTile(3)}}

		// When: drawing once
		tile, ok := deck.Draw()

		// Then: the last tile comes off first
		require.True(t, ok)
		assert.Equal(t, NewNumberedTile(3), tile)
		assert.Equal(t, 2, deck.Len())
	})
}
