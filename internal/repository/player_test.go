package repository

import (
	"testing"

	"github.com/rocketscienceinc/tilematch-backend/internal/apperror"
	"github.com/rocketscienceinc/tilematch-backend/internal/entity"
	"github.com/rocketscienceinc/tilematch-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	playerRepo := NewPlayerRepository(st.Storage)

	// Given: a player with an id and a hand
	player := &entity.Player{
		ID:                  "p123",
		Name:                "alice",
		Hand:                []entity.Tile{entity.NewNumberedTile(3), entity.NewHonorTile(1)},
		WaitingDiscardIndex: -1,
	}

	// When: CreateOrUpdate is called
	err := playerRepo.CreateOrUpdate(ctx, player)

	// Then: no error should be returned
	require.NoError(t, err)
}

func TestPlayerRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// Given: a stored player carrying full round state
		player := &entity.Player{
			ID:                  "p123",
			Name:                "alice",
			SessionID:           "s1",
			Hand:                []entity.Tile{entity.NewNumberedTile(3), entity.NewHonorTile(1)},
			DiscardPile:         []entity.Tile{entity.NewNumberedTile(9)},
			IsWaiting:           true,
			WaitingDiscardIndex: 0,
			Connected:           true,
		}

		err := playerRepo.CreateOrUpdate(ctx, player)
		require.NoError(t, err)

		// When: GetByID is called with the existing id
		retrieved, err := playerRepo.GetByID(ctx, player.ID)

		// Then: the round state survives the round-trip
		require.NoError(t, err)
		assert.Equal(t, player, retrieved)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// When: GetByID is called with a non-existent id
		retrieved, err := playerRepo.GetByID(ctx, "nobody")

		// Then: ErrPlayerNotFound should be returned
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrPlayerNotFound)
		assert.Empty(t, retrieved.ID)
	})
}

func TestPlayerRepository_DeleteByID(t *testing.T) {
	ctx, st := suite.New(t)

	playerRepo := NewPlayerRepository(st.Storage)

	// Given: a stored player
	player := &entity.Player{ID: "p123", WaitingDiscardIndex: -1}
	err := playerRepo.CreateOrUpdate(ctx, player)
	require.NoError(t, err)

	// When: DeleteByID is called
	err = playerRepo.DeleteByID(ctx, player.ID)

	// Then: the player is gone
	require.NoError(t, err)

	_, err = playerRepo.GetByID(ctx, player.ID)
	assert.ErrorIs(t, err, apperror.ErrPlayerNotFound)
}
