package entity

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rocketscienceinc/tilematch-backend/internal/apperror"
)

const (
	PhaseFinished = "finished"
	PhasePlaying  = "playing"
	PhaseWaiting  = "waiting"

	OutcomeSelfDraw       = "self-draw"
	OutcomeDiscardClaim   = "discard-claim"
	OutcomeExhaustiveDraw = "exhaustive-draw"
	OutcomeAbandoned      = "abandoned"

	SeatCount = 2
)

var ErrUnknownPhase = fmt.Errorf("unknown session phase")

// Session is the authoritative state machine binding two seats, the deck,
// the turn pointer and the session lifecycle.
type Session struct {
	ID           string    `json:"id"`
	Players      []*Player `json:"players"`
	Deck         *Deck     `json:"deck,omitempty"`
	CurrentSeat  int       `json:"current_seat"`
	Phase        string    `json:"phase"`
	WinnerSeat   *int      `json:"winner_seat,omitempty"`
	Outcome      string    `json:"outcome,omitempty"`
	WinningTile  *Tile     `json:"winning_tile,omitempty"`
	LastActivity time.Time `json:"last_activity"`
}

func NewSession(id string) *Session {
	return &Session{
		ID:           id,
		Phase:        PhaseWaiting,
		LastActivity: time.Now(),
	}
}

// AddPlayer - seats a player. Seating the second player starts the round.
func (that *Session) AddPlayer(player *Player) error {
	if len(that.Players) >= SeatCount {
		return fmt.Errorf("%w: session %s", apperror.ErrSeatOccupied, that.ID)
	}

	player.SessionID = that.ID
	player.Connected = true
	that.Players = append(that.Players, player)

	if len(that.Players) == SeatCount {
		that.start()
	}

	return nil
}

// start - the waiting->playing transition: reset both seats, reshuffle,
// deal four tiles each in strict alternating order, pick the first seat
// uniformly at random.
func (that *Session) start() {
	for _, player := range that.Players {
		player.ResetForDeal()
	}

	that.Deck = NewDeck()

	for dealt := 0; dealt < HandSizeDrawing*SeatCount; dealt++ {
		tile, ok := that.Deck.Draw()
		if !ok {
			break
		}
		that.Players[dealt%SeatCount].AddToHand(tile)
	}

	that.CurrentSeat = rand.Intn(SeatCount) //nolint: gosec // seat pick, not crypto
	that.Phase = PhasePlaying
	that.LastActivity = time.Now()
}

// Finish - the playing->finished transition. Finished is terminal.
func (that *Session) Finish(outcome string, winnerSeat *int, winningTile *Tile) {
	if that.IsFinished() {
		return
	}

	that.Phase = PhaseFinished
	that.Outcome = outcome
	that.WinnerSeat = winnerSeat
	that.WinningTile = winningTile
	that.LastActivity = time.Now()
}

// AdvanceTurn - moves the turn pointer by exactly one seat.
// Called only after a completed discard that did not end the game.
func (that *Session) AdvanceTurn() {
	that.CurrentSeat = (that.CurrentSeat + 1) % SeatCount
}

func (that *Session) IsFinished() bool {
	return that.Phase == PhaseFinished
}

func (that *Session) IsPlaying() bool {
	return that.Phase == PhasePlaying
}

func (that *Session) IsWaiting() bool {
	return that.Phase == PhaseWaiting
}

func (that *Session) ConfirmPlaying() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrSessionNotStarted
	case that.IsFinished():
		return apperror.ErrSessionFinished
	case that.IsPlaying():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownPhase, that.Phase)
	}
}

// SeatOf - resolves a player identity to its seat index.
func (that *Session) SeatOf(playerID string) (int, bool) {
	for seat, player := range that.Players {
		if player.ID == playerID {
			return seat, true
		}
	}

	return 0, false
}

func (that *Session) PlayerAt(seat int) *Player {
	if seat < 0 || seat >= len(that.Players) {
		return nil
	}

	return that.Players[seat]
}

func (that *Session) CurrentPlayer() *Player {
	return that.PlayerAt(that.CurrentSeat)
}

// OpponentSeat - the other seat index.
func (that *Session) OpponentSeat(seat int) int {
	return (seat + 1) % SeatCount
}

// DiscardCount - total discards across both seats. Zero means the very
// first turn of the round.
func (that *Session) DiscardCount() int {
	total := 0
	for _, player := range that.Players {
		total += len(player.DiscardPile)
	}

	return total
}

// OpponentLastDiscard - the most recent discard of the given seat's opponent.
func (that *Session) OpponentLastDiscard(seat int) (Tile, bool) {
	opponent := that.PlayerAt(that.OpponentSeat(seat))
	if opponent == nil {
		return Tile{}, false
	}

	return opponent.LastDiscard()
}

func (that *Session) Touch() {
	that.LastActivity = time.Now()
}

// SeatSnapshot is one seat's view inside a redacted snapshot.
type SeatSnapshot struct {
	Name                string `json:"name,omitempty"`
	HandCount           int    `json:"hand_count"`
	Hand                []Tile `json:"hand,omitempty"`
	DiscardPile         []Tile `json:"discard_pile"`
	IsWaiting           bool   `json:"is_waiting"`
	WaitingDiscardIndex int    `json:"waiting_discard_index"`
	Connected           bool   `json:"connected"`
}

// Snapshot is the per-seat redacted state sent after every mutation.
type Snapshot struct {
	SessionID   string                  `json:"session_id"`
	Phase       string                  `json:"phase"`
	CurrentSeat int                     `json:"current_seat"`
	DeckCount   int                     `json:"deck_count"`
	YourSeat    int                     `json:"your_seat"`
	Seats       [SeatCount]SeatSnapshot `json:"seats"`
	WinnerSeat  *int                    `json:"winner_seat,omitempty"`
	Outcome     string                  `json:"outcome,omitempty"`
	WinningTile *Tile                   `json:"winning_tile,omitempty"`
}

// SnapshotFor - builds the redacted snapshot for one seat: the seat's own
// hand in full, the opponent's hand as a count only, both discard piles in
// full.
func (that *Session) SnapshotFor(forSeat int) Snapshot {
	snapshot := Snapshot{
		SessionID:   that.ID,
		Phase:       that.Phase,
		CurrentSeat: that.CurrentSeat,
		YourSeat:    forSeat,
		WinnerSeat:  that.WinnerSeat,
		Outcome:     that.Outcome,
		WinningTile: that.WinningTile,
	}

	if that.Deck != nil {
		snapshot.DeckCount = that.Deck.Len()
	}

	for seat := 0; seat < SeatCount; seat++ {
		player := that.PlayerAt(seat)
		if player == nil {
			continue
		}

		view := SeatSnapshot{
			Name:                player.Name,
			HandCount:           len(player.Hand),
			DiscardPile:         player.DiscardPile,
			IsWaiting:           player.IsWaiting,
			WaitingDiscardIndex: player.WaitingDiscardIndex,
			Connected:           player.Connected,
		}

		if seat == forSeat {
			view.Hand = player.Hand
		}

		snapshot.Seats[seat] = view
	}

	return snapshot
}
