package websocket

import (
	"time"

	"github.com/rocketscienceinc/tilematch-backend/internal/entity"
)

// placeholderScore - scoring beyond win/lose is out of scope; the winner
// gets a fixed point.
const placeholderScore = 1

// The Server implements service.Notifier: every committed mutation is
// pushed to the connected seats.

func (that *Server) SessionStarted(session *entity.Session) {
	that.broadcast(session, actionSessionStarted, func(int) Payload {
		return Payload{SessionID: session.ID}
	})
}

func (that *Server) StateUpdate(session *entity.Session) {
	that.broadcast(session, actionStateUpdate, func(seat int) Payload {
		snapshot := session.SnapshotFor(seat)
		return Payload{State: &snapshot}
	})
}

func (that *Server) TurnTimerStarted(session *entity.Session, seat int, limit time.Duration) {
	that.broadcast(session, actionTurnTimerStarted, func(int) Payload {
		timerSeat := seat
		return Payload{Seat: &timerSeat, LimitMS: limit.Milliseconds()}
	})
}

func (that *Server) TileDiscarded(session *entity.Session, seat int, tile entity.Tile, forced bool) {
	that.broadcast(session, actionTileDiscarded, func(int) Payload {
		discardSeat := seat
		discarded := tile
		return Payload{Seat: &discardSeat, Tile: &discarded, Forced: forced}
	})
}

func (that *Server) WaitingDeclared(session *entity.Session, seat int) {
	that.broadcast(session, actionWaitingDeclared, func(int) Payload {
		declaredSeat := seat
		return Payload{Seat: &declaredSeat}
	})
}

// ClaimOpportunity - prompts only the seat that may claim; the opponent
// learns nothing until the claim settles.
func (that *Server) ClaimOpportunity(session *entity.Session, seat int, tile entity.Tile) {
	player := session.PlayerAt(seat)
	if player == nil {
		return
	}

	conn, ok := that.connectionOf(player.ID)
	if !ok {
		return
	}

	claimSeat := seat
	claimTile := tile
	payload := Payload{Seat: &claimSeat, Tile: &claimTile}

	if err := that.sendMessage(conn, actionClaimOpportunity, payload); err != nil {
		that.logger.Error("failed to send claim opportunity", "playerID", player.ID, "error", err)
	}
}

func (that *Server) SessionEnded(session *entity.Session) {
	that.broadcast(session, actionSessionEnded, func(int) Payload {
		payload := Payload{
			Outcome:     session.Outcome,
			WinnerSeat:  session.WinnerSeat,
			WinningTile: session.WinningTile,
		}

		if session.WinnerSeat != nil {
			payload.Score = placeholderScore
		}

		return payload
	})
}

// broadcast - sends a per-seat payload to every connected seat.
func (that *Server) broadcast(session *entity.Session, action string, payloadFor func(seat int) Payload) {
	log := that.logger.With("method", "broadcast", "action", action, "sessionID", session.ID)

	for seat, player := range session.Players {
		conn, ok := that.connectionOf(player.ID)
		if !ok {
			log.Debug("connection not found for player", "playerID", player.ID)
			continue
		}

		if err := that.sendMessage(conn, action, payloadFor(seat)); err != nil {
			log.Error("failed to send message", "playerID", player.ID, "error", err)
		}
	}
}
