package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tilematch-backend/internal/entity"
)

type SessionService interface {
	GetSessionByID(ctx context.Context, id string) (*entity.Session, error)
	GetSessionByPlayerID(ctx context.Context, playerID string) (*entity.Session, error)
	SaveSession(ctx context.Context, session *entity.Session) error
	CleanupSession(ctx context.Context, session *entity.Session)
	ListSessionIDs(ctx context.Context) ([]string, error)
}

type sessionRepository interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
	ListIDs(ctx context.Context) ([]string, error)
}

type sessionService struct {
	logger *slog.Logger

	sessionRepo   sessionRepository
	playerService PlayerService
}

func NewSessionService(logger *slog.Logger, sessionRepo sessionRepository, playerService PlayerService) SessionService {
	return &sessionService{
		logger:        logger,
		sessionRepo:   sessionRepo,
		playerService: playerService,
	}
}

func (that *sessionService) GetSessionByID(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	return session, nil
}

// GetSessionByPlayerID - O(1) directory lookup: the player record carries
// its session id.
func (that *sessionService) GetSessionByPlayerID(ctx context.Context, playerID string) (*entity.Session, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	session, err := that.sessionRepo.GetByID(ctx, player.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	return session, nil
}

func (that *sessionService) SaveSession(ctx context.Context, session *entity.Session) error {
	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// CleanupSession - evicts the session and detaches both seats from the
// directory.
func (that *sessionService) CleanupSession(ctx context.Context, session *entity.Session) {
	log := that.logger.With("method", "CleanupSession")

	if err := that.sessionRepo.DeleteByID(ctx, session.ID); err != nil {
		log.Error("failed to delete session", "error", err)
	}

	for _, player := range session.Players {
		player.SessionID = ""
		player.Hand = nil
		player.DiscardPile = nil
		player.IsWaiting = false
		player.WaitingDiscardIndex = -1

		if err := that.playerService.UpdatePlayer(ctx, player); err != nil {
			log.Error("failed to detach player", "playerID", player.ID, "error", err)
		}
	}

	log.Info("session evicted", "sessionID", session.ID)
}

func (that *sessionService) ListSessionIDs(ctx context.Context) ([]string, error) {
	ids, err := that.sessionRepo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return ids, nil
}
