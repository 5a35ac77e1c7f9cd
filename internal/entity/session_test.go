package entity

import (
	"testing"

	"github.com/rocketscienceinc/tilematch-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_AddPlayer(t *testing.T) {
	t.Run("First seat leaves the session waiting", func(t *testing.T) {
		// Given: a fresh session
		session := NewSession("s1")

		// When: seating one player
		err := session.AddPlayer(&Player{ID: "p1"})

		// Then: the session still waits for an opponent
		require.NoError(t, err)
		assert.True(t, session.IsWaiting())
		assert.Equal(t, "s1", session.Players[0].SessionID)
		assert.True(t, session.Players[0].Connected)
	})

	t.Run("Second seat starts the round", func(t *testing.T) {
		// Given: a session with one seat filled
		session := NewSession("s1")
		require.NoError(t, session.AddPlayer(&Player{ID: "p1"}))

		// When: seating the second player
		err := session.AddPlayer(&Player{ID: "p2"})

		// Then: the round starts with four tiles each and forty left in the deck
		require.NoError(t, err)
		assert.True(t, session.IsPlaying())
		assert.Len(t, session.Players[0].Hand, HandSizeDrawing)
		assert.Len(t, session.Players[1].Hand, HandSizeDrawing)
		assert.Equal(t, DeckSize-HandSizeDrawing*SeatCount, session.Deck.Len())
		assert.Contains(t, []int{0, 1}, session.CurrentSeat)
	})

	t.Run("Third seat is rejected", func(t *testing.T) {
		// Given: a full session
		session := NewSession("s1")
		require.NoError(t, session.AddPlayer(&Player{ID: "p1"}))
		require.NoError(t, session.AddPlayer(&Player{ID: "p2"}))

		// When: seating a third player
		err := session.AddPlayer(&Player{ID: "p3"})

		// Then: ErrSeatOccupied is returned
		assert.ErrorIs(t, err, apperror.ErrSeatOccupied)
		assert.Len(t, session.Players, SeatCount)
	})
}

func TestSession_ConfirmPlaying(t *testing.T) {
	t.Run("Returns ErrSessionNotStarted while waiting", func(t *testing.T) {
		// Given: a session nobody joined yet
		session := NewSession("s1")

		// When: confirming the playing phase
		err := session.ConfirmPlaying()

		// Then: the not-started sentinel is returned
		assert.ErrorIs(t, err, apperror.ErrSessionNotStarted)
	})

	t.Run("Returns nil while playing", func(t *testing.T) {
		// Given: a started session
		session := &Session{Phase: PhasePlaying}

		// When: confirming the playing phase
		err := session.ConfirmPlaying()

		// Then: no error
		assert.NoError(t, err)
	})

	t.Run("Returns ErrSessionFinished after the end", func(t *testing.T) {
		// Given: a finished session
		session := &Session{Phase: PhaseFinished}

		// When: confirming the playing phase
		err := session.ConfirmPlaying()

		// Then: the finished sentinel is returned
		assert.ErrorIs(t, err, apperror.ErrSessionFinished)
	})

	t.Run("Returns error for unknown phase", func(t *testing.T) {
		// Given: a session with a corrupted phase
		session := &Session{Phase: "weird"}

		// When: confirming the playing phase
		err := session.ConfirmPlaying()

		// Then: the unknown-phase error is returned
		assert.ErrorIs(t, err, ErrUnknownPhase)
	})
}

func TestSession_Finish(t *testing.T) {
	t.Run("Records outcome, winner and tile", func(t *testing.T) {
		// Given: a playing session
		session := &Session{Phase: PhasePlaying}
		winner := 1
		tile := NewHonorTile(2)

		// When: finishing with a self-draw win
		session.Finish(OutcomeSelfDraw, &winner, &tile)

		// Then: the terminal state is recorded
		assert.True(t, session.IsFinished())
		assert.Equal(t, OutcomeSelfDraw, session.Outcome)
		require.NotNil(t, session.WinnerSeat)
		assert.Equal(t, 1, *session.WinnerSeat)
		require.NotNil(t, session.WinningTile)
		assert.Equal(t, tile, *session.WinningTile)
	})

	t.Run("Finished is terminal", func(t *testing.T) {
		// Given: a session already finished as an exhaustive draw
		session := &Session{Phase: PhasePlaying}
		session.Finish(OutcomeExhaustiveDraw, nil, nil)

		// When: finishing again with a different outcome
		winner := 0
		session.Finish(OutcomeSelfDraw, &winner, nil)

		// Then: the first outcome stands
		assert.Equal(t, OutcomeExhaustiveDraw, session.Outcome)
		assert.Nil(t, session.WinnerSeat)
	})
}

func TestSession_AdvanceTurn(t *testing.T) {
	// Given: a session with the turn at seat 0
	session := &Session{Phase: PhasePlaying, CurrentSeat: 0}

	// When: advancing twice
	session.AdvanceTurn()
	firstAdvance := session.CurrentSeat
	session.AdvanceTurn()

	// Then: the pointer alternates strictly between the two seats
	assert.Equal(t, 1, firstAdvance)
	assert.Equal(t, 0, session.CurrentSeat)
}

func TestSession_OpponentLastDiscard(t *testing.T) {
	t.Run("Returns the opponent's most recent discard", func(t *testing.T) {
		// Given: a session where seat 1 discarded twice
		opponent := &Player{ID: "p2"}
		opponent.Discard(NewNumberedTile(4))
		opponent.Discard(NewNumberedTile(9))
		session := &Session{
			Phase:   PhasePlaying,
			Players: []*Player{{ID: "p1"}, opponent},
		}

		// When: seat 0 asks for the opponent's last discard
		tile, ok := session.OpponentLastDiscard(0)

		// Then: the second discard is returned
		require.True(t, ok)
		assert.Equal(t, NewNumberedTile(9), tile)
	})

	t.Run("Reports ok=false before any discard", func(t *testing.T) {
		// Given: a session with no discards
		session := &Session{
			Phase:   PhasePlaying,
			Players: []*Player{{ID: "p1"}, {ID: "p2"}},
		}

		// When: seat 0 asks for the opponent's last discard
		_, ok := session.OpponentLastDiscard(0)

		// Then: there is none
		assert.False(t, ok)
	})
}

func TestSession_SnapshotFor(t *testing.T) {
	// Given: a playing session with distinct hands and discard piles
	session := &Session{
		ID:          "s1",
		Phase:       PhasePlaying,
		CurrentSeat: 1,
		Deck:        &Deck{Tiles: []Tile{NewNumberedTile(1)}},
		Players: []*Player{
			{
				ID:          "p1",
				Name:        "alice",
				Hand:        []Tile{NewNumberedTile(1), NewNumberedTile(2), NewNumberedTile(3), NewHonorTile(1)},
				DiscardPile: []Tile{NewNumberedTile(9)},
				Connected:   true,
			},
			{
				ID:          "p2",
				Name:        "bob",
				Hand:        []Tile{NewHonorTile(2), NewHonorTile(2), NewHonorTile(3), NewNumberedTile(5), NewNumberedTile(6)},
				DiscardPile: nil,
				IsWaiting:   true,
				Connected:   true,
			},
		},
	}

	t.Run("Own hand is visible in full", func(t *testing.T) {
		// When: building the snapshot for seat 0
		snapshot := session.SnapshotFor(0)

		// Then: seat 0 sees its own tiles
		assert.Equal(t, 0, snapshot.YourSeat)
		assert.Equal(t, session.Players[0].Hand, snapshot.Seats[0].Hand)
		assert.Equal(t, 4, snapshot.Seats[0].HandCount)
	})

	t.Run("Opponent hand is reduced to a count", func(t *testing.T) {
		// When: building the snapshot for seat 0
		snapshot := session.SnapshotFor(0)

		// Then: seat 1's tiles are hidden but counted, its flags remain visible
		assert.Nil(t, snapshot.Seats[1].Hand)
		assert.Equal(t, 5, snapshot.Seats[1].HandCount)
		assert.True(t, snapshot.Seats[1].IsWaiting)
	})

	t.Run("Both discard piles are public", func(t *testing.T) {
		// When: building the snapshot for seat 1
		snapshot := session.SnapshotFor(1)

		// Then: seat 0's discards are fully visible to seat 1
		assert.Equal(t, session.Players[0].DiscardPile, snapshot.Seats[0].DiscardPile)
		assert.Equal(t, 1, snapshot.DeckCount)
		assert.Equal(t, 1, snapshot.CurrentSeat)
	})
}
