package service

import (
	"time"

	"github.com/rocketscienceinc/tilematch-backend/internal/entity"
)

// Notifier pushes authoritative state changes to the connected seats.
// The transport layer implements it; the gameplay service calls it after
// every committed mutation.
type Notifier interface {
	SessionStarted(session *entity.Session)
	StateUpdate(session *entity.Session)
	TurnTimerStarted(session *entity.Session, seat int, limit time.Duration)
	TileDiscarded(session *entity.Session, seat int, tile entity.Tile, forced bool)
	WaitingDeclared(session *entity.Session, seat int)
	ClaimOpportunity(session *entity.Session, seat int, tile entity.Tile)
	SessionEnded(session *entity.Session)
}

// NoopNotifier is the default until a transport registers itself.
type NoopNotifier struct{}

func (NoopNotifier) SessionStarted(*entity.Session)                                 {}
func (NoopNotifier) StateUpdate(*entity.Session)                                    {}
func (NoopNotifier) TurnTimerStarted(*entity.Session, int, time.Duration)           {}
func (NoopNotifier) TileDiscarded(*entity.Session, int, entity.Tile, bool)          {}
func (NoopNotifier) WaitingDeclared(*entity.Session, int)                           {}
func (NoopNotifier) ClaimOpportunity(*entity.Session, int, entity.Tile)             {}
func (NoopNotifier) SessionEnded(*entity.Session)                                   {}
