package entity

const (
	// HandSizeDrawing - hand size while the seat is awaiting a draw.
	HandSizeDrawing = 4
	// HandSizeDiscarding - hand size while the seat is awaiting a discard.
	HandSizeDiscarding = 5
)

// Player is the per-seat mutable state. It is owned exclusively by the
// session that seated it and is destroyed with the session.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	SessionID string `json:"session_id,omitempty"`

	Hand        []Tile `json:"hand"`
	DiscardPile []Tile `json:"discard_pile"`

	IsWaiting bool `json:"is_waiting"`
	// WaitingDiscardIndex - index into DiscardPile of the discard that marked
	// the waiting declaration. Display only, -1 until declared.
	WaitingDiscardIndex int `json:"waiting_discard_index"`

	Connected bool `json:"connected"`
}

// ResetForDeal - clears all round state before tiles are dealt.
func (that *Player) ResetForDeal() {
	that.Hand = nil
	that.DiscardPile = nil
	that.IsWaiting = false
	that.WaitingDiscardIndex = -1
}

func (that *Player) AddToHand(tile Tile) {
	that.Hand = append(that.Hand, tile)
}

// RemoveFromHand - removes one physical copy of the tile from the hand.
func (that *Player) RemoveFromHand(tile Tile) bool {
	for i, held := range that.Hand {
		if held == tile {
			that.Hand = append(that.Hand[:i], that.Hand[i+1:]...)
			return true
		}
	}

	return false
}

func (that *Player) HoldsTile(tile Tile) bool {
	for _, held := range that.Hand {
		if held == tile {
			return true
		}
	}

	return false
}

func (that *Player) Discard(tile Tile) {
	that.DiscardPile = append(that.DiscardPile, tile)
}

// LastDiscard - the most recent tile this player discarded.
func (that *Player) LastDiscard() (Tile, bool) {
	if len(that.DiscardPile) == 0 {
		return Tile{}, false
	}

	return that.DiscardPile[len(that.DiscardPile)-1], true
}
