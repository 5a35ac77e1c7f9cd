package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tilematch-backend/internal/entity"
)

// Inbound actions.
const (
	actionJoin              = "join"
	actionDrawTile          = "draw-tile"
	actionDiscardTile       = "discard-tile"
	actionDeclareWaiting    = "declare-waiting"
	actionDeclareWin        = "declare-win"
	actionRequestNewSession = "request-new-session"
	actionAttemptReconnect  = "attempt-reconnect"
)

// Outbound actions.
const (
	actionSessionStarted    = "session-started"
	actionStateUpdate       = "state-update"
	actionTurnTimerStarted  = "turn-timer-started"
	actionTileDiscarded     = "tile-discarded"
	actionWaitingDeclared   = "waiting-declared"
	actionClaimOpportunity  = "claim-opportunity"
	actionSessionEnded      = "session-ended"
	actionActionRejected    = "action-rejected"
	actionReconnectAccepted = "reconnect-accepted"
	actionReconnectRejected = "reconnect-rejected"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PlayerInfo identifies the sender in inbound payloads and echoes the
// assigned identity back in responses.
type PlayerInfo struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Payload is the single envelope for both directions; omitempty keeps each
// action's wire shape minimal.
type Payload struct {
	Player    *PlayerInfo `json:"player,omitempty"`
	SessionID string      `json:"session_id,omitempty"`

	TileID string `json:"tile_id,omitempty"`
	Kind   string `json:"kind,omitempty"`

	Seat    *int         `json:"seat,omitempty"`
	Tile    *entity.Tile `json:"tile,omitempty"`
	Forced  bool         `json:"forced,omitempty"`
	LimitMS int64        `json:"limit_ms,omitempty"`

	State *entity.Snapshot `json:"state,omitempty"`

	Outcome     string       `json:"outcome,omitempty"`
	WinnerSeat  *int         `json:"winner_seat,omitempty"`
	WinningTile *entity.Tile `json:"winning_tile,omitempty"`
	Score       int          `json:"score,omitempty"`

	Reason string `json:"reason,omitempty"`
}

// frame represents a WebSocket frame and its metadata.
type frame struct {
	isFin   bool
	opCode  byte
	length  uint64
	payload []byte
}
