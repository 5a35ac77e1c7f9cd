package service

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tilematch-backend/internal/entity"
	"github.com/rocketscienceinc/tilematch-backend/internal/pkg"
)

type PlayerService interface {
	GetOrCreatePlayer(ctx context.Context, id, name string) (*entity.Player, error)
	GetPlayerByID(ctx context.Context, id string) (*entity.Player, error)
	UpdatePlayer(ctx context.Context, player *entity.Player) error
}

type playerRepository interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	DeleteByID(ctx context.Context, id string) error
}

type playerService struct {
	playerRepo playerRepository
}

func NewPlayerService(playerRepo playerRepository) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
	}
}

func (that *playerService) GetOrCreatePlayer(ctx context.Context, id, name string) (*entity.Player, error) {
	if id == "" {
		player := &entity.Player{
			ID:                  pkg.GenerateNewPlayerID(),
			Name:                name,
			WaitingDiscardIndex: -1,
		}

		if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to create player: %w", err)
		}

		return player, nil
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if name != "" && player.Name != name {
		player.Name = name
		if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to update player: %w", err)
		}
	}

	return player, nil
}

func (that *playerService) GetPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

func (that *playerService) UpdatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}
