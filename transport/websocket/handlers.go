package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tilematch-backend/internal/apperror"
)

const (
	reasonNotJoined     = "not-joined"
	reasonUnknownAction = "unknown-action"
)

func (that *Server) handleJoin(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleJoin")

	var payloadReq Payload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	var playerID, name string
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
		name = payloadReq.Player.Name
	}

	player, err := that.gameplay.RegisterPlayer(ctx, playerID, name)
	if err != nil {
		log.Error("failed to register player", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, reasonFor(err))
	}

	// The connection must carry the identity before matchmaking runs, or the
	// session-started broadcast for a paired game never reaches this seat.
	that.bindIdentity(player.ID, bufrw)

	session, err := that.gameplay.JoinMatchmaking(ctx, player.ID)
	if err != nil {
		log.Error("failed to join matchmaking", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, reasonFor(err))
	}

	seat, _ := session.SeatOf(player.ID)
	snapshot := session.SnapshotFor(seat)

	payloadResp := Payload{
		Player:    &PlayerInfo{ID: player.ID, Name: player.Name},
		SessionID: session.ID,
		State:     &snapshot,
	}

	if err = that.sendMessage(bufrw, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("player joined", "playerID", player.ID, "sessionID", session.ID)

	return nil
}

func (that *Server) handleDrawTile(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	playerID, ok := that.identityOf(bufrw)
	if !ok {
		return that.sendErrorResponse(bufrw, msg.Action, reasonNotJoined)
	}

	if err := that.gameplay.DrawTile(ctx, playerID); err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, reasonFor(err))
	}

	return nil
}

func (that *Server) handleDiscardTile(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	playerID, ok := that.identityOf(bufrw)
	if !ok {
		return that.sendErrorResponse(bufrw, msg.Action, reasonNotJoined)
	}

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.TileID == "" {
		return that.sendErrorResponse(bufrw, msg.Action, reasonFor(apperror.ErrMissingField))
	}

	if err := that.gameplay.DiscardTile(ctx, playerID, payloadReq.TileID); err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, reasonFor(err))
	}

	return nil
}

func (that *Server) handleDeclareWaiting(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	playerID, ok := that.identityOf(bufrw)
	if !ok {
		return that.sendErrorResponse(bufrw, msg.Action, reasonNotJoined)
	}

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.TileID == "" {
		return that.sendErrorResponse(bufrw, msg.Action, reasonFor(apperror.ErrMissingField))
	}

	if err := that.gameplay.DeclareWaiting(ctx, playerID, payloadReq.TileID); err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, reasonFor(err))
	}

	return nil
}

func (that *Server) handleDeclareWin(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	playerID, ok := that.identityOf(bufrw)
	if !ok {
		return that.sendErrorResponse(bufrw, msg.Action, reasonNotJoined)
	}

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Kind == "" {
		return that.sendErrorResponse(bufrw, msg.Action, reasonFor(apperror.ErrMissingField))
	}

	if err := that.gameplay.DeclareWin(ctx, playerID, payloadReq.Kind); err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, reasonFor(err))
	}

	return nil
}

func (that *Server) handleRequestNewSession(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleRequestNewSession")

	playerID, ok := that.identityOf(bufrw)
	if !ok {
		return that.sendErrorResponse(bufrw, msg.Action, reasonNotJoined)
	}

	player, err := that.gameplay.RegisterPlayer(ctx, playerID, "")
	if err != nil {
		log.Error("failed to register player", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, reasonFor(err))
	}

	if err = that.gameplay.LeaveSession(ctx, playerID); err != nil {
		log.Error("failed to leave session", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, reasonFor(err))
	}

	session, err := that.gameplay.JoinMatchmaking(ctx, playerID)
	if err != nil {
		log.Error("failed to rejoin matchmaking", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, reasonFor(err))
	}

	seat, _ := session.SeatOf(player.ID)
	snapshot := session.SnapshotFor(seat)

	payloadResp := Payload{
		Player:    &PlayerInfo{ID: player.ID, Name: player.Name},
		SessionID: session.ID,
		State:     &snapshot,
	}

	if err = that.sendMessage(bufrw, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

func (that *Server) handleAttemptReconnect(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleAttemptReconnect")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil || payloadReq.Player.ID == "" || payloadReq.SessionID == "" {
		payload := Payload{Reason: reasonFor(apperror.ErrMissingField)}
		return that.sendMessage(bufrw, actionReconnectRejected, payload)
	}

	session, err := that.gameplay.Reconnect(ctx, payloadReq.Player.ID, payloadReq.SessionID)
	if err != nil {
		log.Info("reconnect rejected", "playerID", payloadReq.Player.ID, "error", err)
		payload := Payload{Reason: reasonFor(err)}
		return that.sendMessage(bufrw, actionReconnectRejected, payload)
	}

	that.bindIdentity(payloadReq.Player.ID, bufrw)

	seat, _ := session.SeatOf(payloadReq.Player.ID)
	snapshot := session.SnapshotFor(seat)

	payload := Payload{
		SessionID: session.ID,
		State:     &snapshot,
	}

	if err = that.sendMessage(bufrw, actionReconnectAccepted, payload); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("player reconnected", "playerID", payloadReq.Player.ID, "sessionID", session.ID)

	return nil
}

// reasonFor - maps the error taxonomy to wire reason codes; anything
// unrecognized is reported generically, never propagated raw.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "not-your-turn"
	case errors.Is(err, apperror.ErrSessionNotStarted):
		return "session-not-started"
	case errors.Is(err, apperror.ErrSessionFinished):
		return "session-finished"
	case errors.Is(err, apperror.ErrWrongHandSize):
		return "wrong-hand-size"
	case errors.Is(err, apperror.ErrAlreadyWaiting):
		return "already-waiting"
	case errors.Is(err, apperror.ErrNotWaiting):
		return "not-waiting"
	case errors.Is(err, apperror.ErrNotEligible):
		return "not-eligible"
	case errors.Is(err, apperror.ErrUnknownTile):
		return "unknown-tile"
	case errors.Is(err, apperror.ErrTileNotInHand):
		return "tile-not-in-hand"
	case errors.Is(err, apperror.ErrMissingField):
		return "missing-field"
	case errors.Is(err, apperror.ErrUnknownWinKind):
		return "unknown-win-kind"
	case errors.Is(err, apperror.ErrSessionNotFound):
		return "session-not-found"
	case errors.Is(err, apperror.ErrPlayerNotFound):
		return "player-not-found"
	case errors.Is(err, apperror.ErrSeatOccupied):
		return "seat-occupied"
	case errors.Is(err, apperror.ErrQueryTimeout):
		return "query-timeout"
	default:
		return "internal-error"
	}
}
