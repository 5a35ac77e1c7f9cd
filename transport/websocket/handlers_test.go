package websocket

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rocketscienceinc/tilematch-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
)

func TestReasonFor(t *testing.T) {
	t.Run("Maps every sentinel to its wire code", func(t *testing.T) {
		cases := []struct {
			err    error
			reason string
		}{
			{apperror.ErrNotYourTurn, "not-your-turn"},
			{apperror.ErrSessionNotStarted, "session-not-started"},
			{apperror.ErrSessionFinished, "session-finished"},
			{apperror.ErrWrongHandSize, "wrong-hand-size"},
			{apperror.ErrAlreadyWaiting, "already-waiting"},
			{apperror.ErrNotWaiting, "not-waiting"},
			{apperror.ErrNotEligible, "not-eligible"},
			{apperror.ErrUnknownTile, "unknown-tile"},
			{apperror.ErrTileNotInHand, "tile-not-in-hand"},
			{apperror.ErrMissingField, "missing-field"},
			{apperror.ErrUnknownWinKind, "unknown-win-kind"},
			{apperror.ErrSessionNotFound, "session-not-found"},
			{apperror.ErrPlayerNotFound, "player-not-found"},
			{apperror.ErrSeatOccupied, "seat-occupied"},
			{apperror.ErrQueryTimeout, "query-timeout"},
		}

		for _, tc := range cases {
			assert.Equal(t, tc.reason, reasonFor(tc.err), "error %v", tc.err)
		}
	})

	t.Run("Wrapped sentinels still map", func(t *testing.T) {
		// Given: a sentinel wrapped by a service layer
		err := fmt.Errorf("declare-waiting query: %w", apperror.ErrAlreadyWaiting)

		// Then: the wire code is unchanged
		assert.Equal(t, "already-waiting", reasonFor(err))
	})

	t.Run("Unknown errors are reported generically", func(t *testing.T) {
		// Given: an internal error that must not leak
		err := errors.New("redis: connection refused")

		// Then: the generic code is used
		assert.Equal(t, "internal-error", reasonFor(err))
	})
}
