// Package ruleset holds the pure hand-shape rules: whether a five-tile hand
// is complete, and which tile identities complete a four-tile hand.
package ruleset

import "github.com/rocketscienceinc/tilematch-backend/internal/entity"

const (
	completeHandSize = 5
	waitingHandSize  = 4

	setSize  = 3
	pairSize = 2
)

// IsComplete - reports whether the hand partitions exactly into one set of
// three plus one pair. The set is either a run of three consecutive numbered
// tiles or a matched triple; honor tiles can never form a run.
// Malformed hand sizes evaluate to false rather than erroring.
func IsComplete(hand []entity.Tile) bool {
	if len(hand) != completeHandSize {
		return false
	}

	counts := countByTile(hand)

	// Try every identity held at least twice as the pair, then check the
	// remaining three tiles for a triple or a run.
	for pair, count := range counts {
		if count < pairSize {
			continue
		}

		counts[pair] -= pairSize
		if isSet(counts) {
			counts[pair] += pairSize
			return true
		}
		counts[pair] += pairSize
	}

	return false
}

// WaitingSet - the tile identities whose hypothetical draw would complete
// the four-tile hand, deduplicated by identity. Hands of any other size
// yield an empty set.
func WaitingSet(hand []entity.Tile) []entity.Tile {
	if len(hand) != waitingHandSize {
		return nil
	}

	var waits []entity.Tile

	for _, candidate := range entity.AllTiles() {
		trial := make([]entity.Tile, 0, completeHandSize)
		trial = append(trial, hand...)
		trial = append(trial, candidate)

		if IsComplete(trial) {
			waits = append(waits, candidate)
		}
	}

	return waits
}

// isSet - checks that the remaining three tiles form a matched triple or a
// consecutive numbered run.
func isSet(counts map[entity.Tile]int) bool {
	remaining := make([]entity.Tile, 0, setSize)
	for tile, count := range counts {
		if count == setSize {
			return true
		}
		for i := 0; i < count; i++ {
			remaining = append(remaining, tile)
		}
	}

	if len(remaining) != setSize {
		return false
	}

	return isRun(remaining)
}

// isRun - three distinct numbered tiles with consecutive ranks.
func isRun(tiles []entity.Tile) bool {
	lowest := 0
	for _, tile := range tiles {
		if !tile.IsNumbered() {
			return false
		}
		if lowest == 0 || tile.Rank < lowest {
			lowest = tile.Rank
		}
	}

	seen := [entity.NumberedRanks + 1]bool{}
	for _, tile := range tiles {
		seen[tile.Rank] = true
	}

	return lowest+2 <= entity.NumberedRanks &&
		seen[lowest] && seen[lowest+1] && seen[lowest+2]
}

func countByTile(hand []entity.Tile) map[entity.Tile]int {
	counts := make(map[entity.Tile]int, len(hand))
	for _, tile := range hand {
		counts[tile]++
	}

	return counts
}
