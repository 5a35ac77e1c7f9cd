package repository

import (
	"testing"

	"github.com/rocketscienceinc/tilematch-backend/internal/apperror"
	"github.com/rocketscienceinc/tilematch-backend/internal/entity"
	"github.com/rocketscienceinc/tilematch-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Storage)

	// Given: a waiting session
	session := entity.NewSession("s123")

	// When: CreateOrUpdate is called
	err := sessionRepo.CreateOrUpdate(ctx, session)

	// Then: no error should be returned
	require.NoError(t, err)
}

func TestSessionRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage)

		// Given: a started session with both seats filled
		session := entity.NewSession("s123")
		require.NoError(t, session.AddPlayer(&entity.Player{ID: "p1"}))
		require.NoError(t, session.AddPlayer(&entity.Player{ID: "p2"}))
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

		// When: GetByID is called with the existing id
		retrieved, err := sessionRepo.GetByID(ctx, session.ID)

		// Then: phase, seats and deck survive the round-trip
		require.NoError(t, err)
		assert.Equal(t, session.ID, retrieved.ID)
		assert.Equal(t, entity.PhasePlaying, retrieved.Phase)
		require.Len(t, retrieved.Players, entity.SeatCount)
		assert.Equal(t, "p1", retrieved.Players[0].ID)
		assert.Len(t, retrieved.Players[0].Hand, entity.HandSizeDrawing)
		assert.Equal(t, session.Deck.Len(), retrieved.Deck.Len())
		assert.Equal(t, session.CurrentSeat, retrieved.CurrentSeat)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage)

		// When: GetByID is called with a non-existent id
		retrieved, err := sessionRepo.GetByID(ctx, "nowhere")

		// Then: ErrSessionNotFound should be returned
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrSessionNotFound)
		assert.Empty(t, retrieved.ID)
	})
}

func TestSessionRepository_DeleteByID(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Storage)

	// Given: a stored session
	session := entity.NewSession("s123")
	require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

	// When: DeleteByID is called
	err := sessionRepo.DeleteByID(ctx, session.ID)

	// Then: the session is gone
	require.NoError(t, err)

	_, err = sessionRepo.GetByID(ctx, session.ID)
	assert.ErrorIs(t, err, apperror.ErrSessionNotFound)
}

func TestSessionRepository_ListIDs(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Storage)

	// Given: two stored sessions
	require.NoError(t, sessionRepo.CreateOrUpdate(ctx, entity.NewSession("s1")))
	require.NoError(t, sessionRepo.CreateOrUpdate(ctx, entity.NewSession("s2")))

	// When: listing every session id
	ids, err := sessionRepo.ListIDs(ctx)

	// Then: both ids come back
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, ids)
}
