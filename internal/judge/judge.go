// Package judge orchestrates the four win/advance queries against a session,
// enforcing game-flow preconditions before any hand-shape question is asked.
package judge

import (
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tilematch-backend/internal/apperror"
	"github.com/rocketscienceinc/tilematch-backend/internal/entity"
	"github.com/rocketscienceinc/tilematch-backend/internal/ruleset"
)

// QueryKind is the closed set of judgment queries.
type QueryKind int

const (
	QueryAutoDraw QueryKind = iota
	QuerySelfDrawWin
	QueryDiscardClaim
	QueryDeclareWaiting
)

func (that QueryKind) String() string {
	switch that {
	case QueryAutoDraw:
		return "auto-draw"
	case QuerySelfDrawWin:
		return "self-draw-win"
	case QueryDiscardClaim:
		return "discard-claim"
	case QueryDeclareWaiting:
		return "declare-waiting"
	default:
		return "unknown"
	}
}

// AutoDrawResult - the answer to the turn-start permission query.
// A nil ClaimTile means the seat may simply draw; a non-nil ClaimTile means
// a pending discard-claim pre-empts the draw.
type AutoDrawResult struct {
	Permitted bool
	ClaimTile *entity.Tile
}

type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// CheckAutoDraw - asked when a seat's turn begins. The first turn of the
// round is always permitted; afterwards a declared-waiting seat whose
// waiting set contains the opponent's last discard is denied the draw and
// offered the claim instead. A non-waiting seat is never evaluated.
func (that *Engine) CheckAutoDraw(session *entity.Session, playerID string) (AutoDrawResult, error) {
	seat, err := that.confirmQuery(session, playerID, QueryAutoDraw, true, entity.HandSizeDrawing)
	if err != nil {
		return AutoDrawResult{}, err
	}

	if session.DiscardCount() == 0 {
		return AutoDrawResult{Permitted: true}, nil
	}

	player := session.PlayerAt(seat)
	if !player.IsWaiting {
		return AutoDrawResult{Permitted: true}, nil
	}

	lastDiscard, ok := session.OpponentLastDiscard(seat)
	if !ok {
		return AutoDrawResult{Permitted: true}, nil
	}

	for _, wait := range ruleset.WaitingSet(player.Hand) {
		if wait == lastDiscard {
			claim := lastDiscard
			return AutoDrawResult{Permitted: false, ClaimTile: &claim}, nil
		}
	}

	return AutoDrawResult{Permitted: true}, nil
}

// CheckSelfDrawWin - tests whether the hand, holding the tile just drawn,
// is complete.
func (that *Engine) CheckSelfDrawWin(session *entity.Session, playerID string) (bool, error) {
	seat, err := that.confirmQuery(session, playerID, QuerySelfDrawWin, true, entity.HandSizeDiscarding)
	if err != nil {
		return false, err
	}

	return ruleset.IsComplete(session.PlayerAt(seat).Hand), nil
}

// CheckDiscardClaim - tests whether the opponent's just-discarded tile
// completes the asking seat's hand. This is the one query permitted out of
// turn, and it is meaningful only for a declared-waiting seat.
func (that *Engine) CheckDiscardClaim(session *entity.Session, playerID string) (bool, *entity.Tile, error) {
	seat, err := that.confirmQuery(session, playerID, QueryDiscardClaim, false, entity.HandSizeDrawing)
	if err != nil {
		return false, nil, err
	}

	player := session.PlayerAt(seat)
	if !player.IsWaiting {
		return false, nil, apperror.ErrNotWaiting
	}

	claim, ok := session.OpponentLastDiscard(seat)
	if !ok {
		return false, nil, nil
	}

	trial := make([]entity.Tile, 0, entity.HandSizeDiscarding)
	trial = append(trial, player.Hand...)
	trial = append(trial, claim)

	if !ruleset.IsComplete(trial) {
		return false, nil, nil
	}

	return true, &claim, nil
}

// CheckDeclareWaiting - tests whether discarding the proposed tile leaves a
// hand with a non-empty waiting set. The query never mutates committed
// state; the actual discard and waiting flag follow as a separate operation.
func (that *Engine) CheckDeclareWaiting(session *entity.Session, playerID string, discard entity.Tile) ([]entity.Tile, error) {
	seat, err := that.confirmQuery(session, playerID, QueryDeclareWaiting, true, entity.HandSizeDiscarding)
	if err != nil {
		return nil, err
	}

	player := session.PlayerAt(seat)
	if player.IsWaiting {
		return nil, apperror.ErrAlreadyWaiting
	}

	if !player.HoldsTile(discard) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrTileNotInHand, discard.ID())
	}

	remaining := make([]entity.Tile, 0, entity.HandSizeDrawing)
	removed := false
	for _, held := range player.Hand {
		if !removed && held == discard {
			removed = true
			continue
		}
		remaining = append(remaining, held)
	}

	return ruleset.WaitingSet(remaining), nil
}

// confirmQuery - the shared game-flow preconditions: session playing, the
// identity is seated, turn ownership where required, and the hand size the
// query implies.
func (that *Engine) confirmQuery(session *entity.Session, playerID string, kind QueryKind, ownTurn bool, handSize int) (int, error) {
	log := that.logger.With("method", "confirmQuery", "kind", kind.String(), "sessionID", session.ID, "playerID", playerID)

	if err := session.ConfirmPlaying(); err != nil {
		log.Warn("query rejected", "error", err)
		return 0, err
	}

	seat, ok := session.SeatOf(playerID)
	if !ok {
		log.Warn("query rejected: identity is not seated")
		return 0, fmt.Errorf("%w: %s", apperror.ErrPlayerNotFound, playerID)
	}

	if ownTurn && seat != session.CurrentSeat {
		log.Warn("query rejected: not the seat's turn", "seat", seat)
		return 0, apperror.ErrNotYourTurn
	}

	if len(session.PlayerAt(seat).Hand) != handSize {
		log.Warn("query rejected: wrong hand size", "seat", seat, "have", len(session.PlayerAt(seat).Hand), "need", handSize)
		return 0, fmt.Errorf("%w: have %d, need %d",
			apperror.ErrWrongHandSize, len(session.PlayerAt(seat).Hand), handSize)
	}

	return seat, nil
}
