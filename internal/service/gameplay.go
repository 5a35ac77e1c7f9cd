package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/rocketscienceinc/tilematch-backend/internal/apperror"
	"github.com/rocketscienceinc/tilematch-backend/internal/entity"
	"github.com/rocketscienceinc/tilematch-backend/internal/judge"
	"github.com/rocketscienceinc/tilematch-backend/internal/pkg"
)

const (
	WinKindSelfDraw     = "self-draw"
	WinKindDiscardClaim = "discard-claim"

	callbackTimeout = 5 * time.Second
)

// GameConfig - the gameplay timing knobs, filled from the config file.
type GameConfig struct {
	TurnTimeout    time.Duration
	QueryTimeout   time.Duration
	ReconnectGrace time.Duration
	IdleTimeout    time.Duration
	SweepInterval  time.Duration
}

type GameplayService interface {
	SetNotifier(notifier Notifier)

	RegisterPlayer(ctx context.Context, playerID, name string) (*entity.Player, error)
	JoinMatchmaking(ctx context.Context, playerID string) (*entity.Session, error)
	DrawTile(ctx context.Context, playerID string) error
	DiscardTile(ctx context.Context, playerID, tileID string) error
	DeclareWaiting(ctx context.Context, playerID, tileID string) error
	DeclareWin(ctx context.Context, playerID, kind string) error
	LeaveSession(ctx context.Context, playerID string) error
	Reconnect(ctx context.Context, playerID, sessionID string) (*entity.Session, error)
	HandleDisconnect(ctx context.Context, playerID string)

	RunSweeper(ctx context.Context)
}

type gameplayService struct {
	logger *slog.Logger

	playerService  PlayerService
	sessionService SessionService
	engine         *judge.Engine
	pending        *judge.Registry
	scheduler      *TurnScheduler
	conf           GameConfig

	notifier Notifier

	// poolMutex guards the waiting pool: session ids with a single seat
	// filled, in arrival order.
	poolMutex   sync.Mutex
	waitingPool []string

	// Per-session mutexes serialize handler and timer mutations; timer
	// callbacks re-validate session state after acquiring the lock.
	locksMutex   sync.Mutex
	sessionLocks map[string]*sync.Mutex
}

func NewGameplayService(
	logger *slog.Logger,
	playerService PlayerService,
	sessionService SessionService,
	engine *judge.Engine,
	scheduler *TurnScheduler,
	conf GameConfig,
) GameplayService {
	return &gameplayService{
		logger:         logger,
		playerService:  playerService,
		sessionService: sessionService,
		engine:         engine,
		pending:        judge.NewRegistry(),
		scheduler:      scheduler,
		conf:           conf,
		notifier:       NoopNotifier{},
		sessionLocks:   make(map[string]*sync.Mutex),
	}
}

func (that *gameplayService) SetNotifier(notifier Notifier) {
	that.notifier = notifier
}

// RegisterPlayer - resolves or creates the player identity a connection
// presents before it enters matchmaking.
func (that *gameplayService) RegisterPlayer(ctx context.Context, playerID, name string) (*entity.Player, error) {
	player, err := that.playerService.GetOrCreatePlayer(ctx, playerID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create player: %w", err)
	}

	return player, nil
}

// JoinMatchmaking - pairs the player with a waiting seat or enqueues a new
// waiting session. A player already seated in a live session gets that
// session back instead.
func (that *gameplayService) JoinMatchmaking(ctx context.Context, playerID string) (*entity.Session, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.SessionID != "" {
		session, sessionErr := that.sessionService.GetSessionByID(ctx, player.SessionID)
		if sessionErr == nil && !session.IsFinished() {
			return session, nil
		}

		player.SessionID = ""
		if err = that.playerService.UpdatePlayer(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to detach player: %w", err)
		}
	}

	session, err := that.pairOrEnqueue(ctx, player)
	if err != nil {
		return nil, err
	}

	if session.IsPlaying() {
		that.notifier.SessionStarted(session)
		that.notifier.StateUpdate(session)
		that.beginTurn(session)
	}

	return session, nil
}

func (that *gameplayService) pairOrEnqueue(ctx context.Context, player *entity.Player) (*entity.Session, error) {
	for {
		candidateID, ok := that.popWaiting()
		if !ok {
			break
		}

		session, err := that.seatIntoWaiting(ctx, candidateID, player)
		if err != nil {
			return nil, err
		}

		if session == nil {
			// The candidate vanished or filled up between the pool pop and
			// the lock; try the next one.
			continue
		}

		return session, nil
	}

	session := entity.NewSession(pkg.GenerateSessionID())
	if err := session.AddPlayer(player); err != nil {
		return nil, fmt.Errorf("failed to seat player: %w", err)
	}

	if err := that.commitSession(ctx, session); err != nil {
		return nil, err
	}

	that.poolMutex.Lock()
	that.waitingPool = append(that.waitingPool, session.ID)
	that.poolMutex.Unlock()

	return session, nil
}

func (that *gameplayService) popWaiting() (string, bool) {
	that.poolMutex.Lock()
	defer that.poolMutex.Unlock()

	if len(that.waitingPool) == 0 {
		return "", false
	}

	candidateID := that.waitingPool[0]
	that.waitingPool = that.waitingPool[1:]

	return candidateID, true
}

// seatIntoWaiting - seats the player into the candidate session under the
// session lock. The state re-validates after the lock: a disconnect or a
// competing join may have finished the session between the pool pop and
// here, in which case the candidate is discarded and nil comes back.
func (that *gameplayService) seatIntoWaiting(ctx context.Context, sessionID string, player *entity.Player) (*entity.Session, error) {
	unlock, session, err := that.lockSessionLoaded(ctx, sessionID)
	if err != nil {
		return nil, nil
	}
	defer unlock()

	if !session.IsWaiting() || len(session.Players) != 1 {
		return nil, nil
	}

	if session.Players[0].ID == player.ID {
		that.poolMutex.Lock()
		that.waitingPool = append([]string{sessionID}, that.waitingPool...)
		that.poolMutex.Unlock()

		return session, nil
	}

	if err = session.AddPlayer(player); err != nil {
		return nil, fmt.Errorf("failed to seat player: %w", err)
	}

	if err = that.commitSession(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// commitSession - persists the session and every seated player record.
func (that *gameplayService) commitSession(ctx context.Context, session *entity.Session) error {
	if err := that.sessionService.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	for _, player := range session.Players {
		if err := that.playerService.UpdatePlayer(ctx, player); err != nil {
			return fmt.Errorf("failed to save player: %w", err)
		}
	}

	return nil
}

// DrawTile - the seat asks to take its default turn action. The judgment
// engine decides first whether a pending discard-claim pre-empts the draw.
func (that *gameplayService) DrawTile(ctx context.Context, playerID string) error {
	unlock, session, err := that.lockSessionOf(ctx, playerID)
	if err != nil {
		return err
	}
	defer unlock()

	return that.drawTile(ctx, session, playerID, false, false)
}

// drawTile - the single draw path shared by manual, forced and
// claim-expired actions. skipClaimCheck is set once the claim round-trip
// has already settled negatively.
func (that *gameplayService) drawTile(ctx context.Context, session *entity.Session, playerID string, forced, skipClaimCheck bool) error {
	log := that.logger.With("method", "drawTile", "sessionID", session.ID, "playerID", playerID)

	if !skipClaimCheck {
		result, err := that.engine.CheckAutoDraw(session, playerID)
		if err != nil {
			return fmt.Errorf("auto-draw query: %w", err)
		}

		if !result.Permitted {
			// Park the turn timer: the claim round-trip owns the clock until
			// it settles or expires.
			that.scheduler.Cancel(turnKey(session.ID))
			that.surfaceClaimOpportunity(session, playerID, *result.ClaimTile)
			return nil
		}
	}

	seat, ok := session.SeatOf(playerID)
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrPlayerNotFound, playerID)
	}

	that.scheduler.Cancel(turnKey(session.ID))

	tile, ok := session.Deck.Draw()
	if !ok {
		// Exhaustive draw: the deck ran out with no winner.
		session.Finish(entity.OutcomeExhaustiveDraw, nil, nil)
		that.finishSession(ctx, session)
		return nil
	}

	player := session.PlayerAt(seat)
	player.AddToHand(tile)
	session.Touch()

	if err := that.commitSession(ctx, session); err != nil {
		return err
	}

	win, err := that.engine.CheckSelfDrawWin(session, playerID)
	if err != nil {
		// Fail closed: an undecidable win query never ends the game.
		log.Error("self-draw query failed", "error", err)
		win = false
	}

	if win {
		winnerSeat := seat
		winningTile := tile
		session.Finish(entity.OutcomeSelfDraw, &winnerSeat, &winningTile)
		that.finishSession(ctx, session)
		return nil
	}

	if player.IsWaiting {
		// A declared-waiting seat draws and immediately discards with no
		// seat-directed choice.
		return that.discardTile(ctx, session, playerID, tile, true)
	}

	that.notifier.StateUpdate(session)
	that.beginTurn(session)

	if forced {
		log.Info("forced draw applied")
	}

	return nil
}

// surfaceClaimOpportunity - registers the pending discard-claim round-trip
// and prompts the seat. If the prompt expires the fallback applies and the
// draw proceeds on the seat's behalf.
func (that *gameplayService) surfaceClaimOpportunity(session *entity.Session, playerID string, tile entity.Tile) {
	log := that.logger.With("method", "surfaceClaimOpportunity", "sessionID", session.ID, "playerID", playerID)

	queryID := pkg.GenerateQueryID()
	deadline := that.scheduler.Now().Add(that.conf.QueryTimeout)
	sessionID := session.ID

	that.pending.DropByPlayer(playerID)

	that.pending.Add(queryID, playerID, judge.QueryDiscardClaim, deadline, func(result judge.Result) {
		if result.Granted {
			return
		}

		// Claim declined or timed out: progress the game with the draw the
		// claim had pre-empted.
		ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
		defer cancel()

		unlock, current, err := that.lockSession(ctx, sessionID)
		if err != nil {
			return
		}
		defer unlock()

		if !current.IsPlaying() {
			return
		}
		if seat, ok := current.SeatOf(playerID); !ok || seat != current.CurrentSeat {
			return
		}

		if err = that.drawTile(ctx, current, playerID, result.TimedOut, true); err != nil {
			log.Error("failed to apply fallback draw", "error", err)
		}
	})

	that.scheduler.Schedule(claimKey(playerID), that.conf.QueryTimeout, func() {
		that.pending.Expire(that.scheduler.Now())
	})

	seat, _ := session.SeatOf(playerID)
	that.notifier.ClaimOpportunity(session, seat, tile)
}

// DiscardTile - the seat discards a named tile, advancing the turn.
func (that *gameplayService) DiscardTile(ctx context.Context, playerID, tileID string) error {
	tile, err := entity.ParseTileID(tileID)
	if err != nil {
		return err
	}

	unlock, session, err := that.lockSessionOf(ctx, playerID)
	if err != nil {
		return err
	}
	defer unlock()

	return that.discardTile(ctx, session, playerID, tile, false)
}

// discardTile - the single discard path shared by manual, forced and
// waiting-hand automatic discards.
func (that *gameplayService) discardTile(ctx context.Context, session *entity.Session, playerID string, tile entity.Tile, forced bool) error {
	log := that.logger.With("method", "discardTile", "sessionID", session.ID, "playerID", playerID)

	if err := session.ConfirmPlaying(); err != nil {
		return err
	}

	seat, ok := session.SeatOf(playerID)
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrPlayerNotFound, playerID)
	}

	if seat != session.CurrentSeat {
		return apperror.ErrNotYourTurn
	}

	player := session.PlayerAt(seat)
	if len(player.Hand) != entity.HandSizeDiscarding {
		return fmt.Errorf("%w: have %d, need %d",
			apperror.ErrWrongHandSize, len(player.Hand), entity.HandSizeDiscarding)
	}

	if !player.RemoveFromHand(tile) {
		return fmt.Errorf("%w: %s", apperror.ErrTileNotInHand, tile.ID())
	}

	// Cancel before mutating: a late-firing turn timer must never race a
	// committed discard.
	that.scheduler.Cancel(turnKey(session.ID))

	player.Discard(tile)
	session.AdvanceTurn()
	session.Touch()

	if err := that.commitSession(ctx, session); err != nil {
		return err
	}

	that.notifier.TileDiscarded(session, seat, tile, forced)
	that.notifier.StateUpdate(session)
	that.beginTurn(session)

	if forced {
		log.Info("automatic discard applied", "tile", tile.ID())
	}

	return nil
}

// DeclareWaiting - runs the eligibility query for the proposed discard and,
// on success, applies the explicit waiting mutation: flag the seat, discard
// the tile, advance the turn.
func (that *gameplayService) DeclareWaiting(ctx context.Context, playerID, tileID string) error {
	tile, err := entity.ParseTileID(tileID)
	if err != nil {
		return err
	}

	unlock, session, err := that.lockSessionOf(ctx, playerID)
	if err != nil {
		return err
	}
	defer unlock()

	waits, err := that.engine.CheckDeclareWaiting(session, playerID, tile)
	if err != nil {
		return fmt.Errorf("declare-waiting query: %w", err)
	}

	if len(waits) == 0 {
		return apperror.ErrNotEligible
	}

	seat, _ := session.SeatOf(playerID)
	player := session.PlayerAt(seat)
	player.IsWaiting = true
	// The declaring discard lands at the tail of the pile.
	player.WaitingDiscardIndex = len(player.DiscardPile)

	if err = that.discardTile(ctx, session, playerID, tile, false); err != nil {
		player.IsWaiting = false
		player.WaitingDiscardIndex = -1
		return err
	}

	that.notifier.WaitingDeclared(session, seat)

	return nil
}

// DeclareWin - settles a win declaration of either kind.
func (that *gameplayService) DeclareWin(ctx context.Context, playerID, kind string) error {
	unlock, session, err := that.lockSessionOf(ctx, playerID)
	if err != nil {
		return err
	}
	defer unlock()

	switch kind {
	case WinKindSelfDraw:
		return that.declareSelfDrawWin(ctx, session, playerID)
	case WinKindDiscardClaim:
		return that.declareDiscardClaimWin(ctx, session, playerID)
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnknownWinKind, kind)
	}
}

func (that *gameplayService) declareSelfDrawWin(ctx context.Context, session *entity.Session, playerID string) error {
	win, err := that.engine.CheckSelfDrawWin(session, playerID)
	if err != nil {
		return fmt.Errorf("self-draw query: %w", err)
	}

	if !win {
		return apperror.ErrNotEligible
	}

	seat, _ := session.SeatOf(playerID)
	player := session.PlayerAt(seat)
	winningTile := player.Hand[len(player.Hand)-1]

	session.Finish(entity.OutcomeSelfDraw, &seat, &winningTile)
	that.finishSession(ctx, session)

	return nil
}

func (that *gameplayService) declareDiscardClaimWin(ctx context.Context, session *entity.Session, playerID string) error {
	// The claim settles the prompt surfaced at auto-draw time; a missing
	// prompt means the opportunity already expired, which the caller must
	// be able to distinguish from a plain denial.
	if _, ok := that.pending.TakeByPlayer(playerID, judge.QueryDiscardClaim); !ok {
		return apperror.ErrQueryTimeout
	}
	that.scheduler.Cancel(claimKey(playerID))

	win, claim, err := that.engine.CheckDiscardClaim(session, playerID)
	if err != nil {
		return fmt.Errorf("discard-claim query: %w", err)
	}

	if !win {
		// Claim denied: resume the draw it had pre-empted.
		if drawErr := that.drawTile(ctx, session, playerID, false, true); drawErr != nil {
			return drawErr
		}

		return apperror.ErrNotEligible
	}

	seat, _ := session.SeatOf(playerID)
	session.Finish(entity.OutcomeDiscardClaim, &seat, claim)
	that.finishSession(ctx, session)

	return nil
}

// LeaveSession - removes the player from its current session; a live
// opponent is notified and the session is evicted.
func (that *gameplayService) LeaveSession(ctx context.Context, playerID string) error {
	unlock, session, err := that.lockSessionOf(ctx, playerID)
	if err != nil {
		if errors.Is(err, apperror.ErrSessionNotFound) || errors.Is(err, apperror.ErrPlayerNotFound) {
			return nil
		}
		return err
	}
	defer unlock()

	that.removeFromPool(session.ID)

	if session.IsPlaying() {
		leaver, _ := session.SeatOf(playerID)
		winnerSeat := session.OpponentSeat(leaver)
		session.Finish(entity.OutcomeAbandoned, &winnerSeat, nil)
		that.finishSession(ctx, session)
		return nil
	}

	session.Finish(entity.OutcomeAbandoned, nil, nil)
	that.finishSession(ctx, session)

	return nil
}

// HandleDisconnect - marks the seat disconnected and starts the bounded
// reconnection grace timer. Unknown identities are a no-op.
func (that *gameplayService) HandleDisconnect(ctx context.Context, playerID string) {
	log := that.logger.With("method", "HandleDisconnect", "playerID", playerID)

	unlock, session, err := that.lockSessionOf(ctx, playerID)
	if err != nil {
		return
	}

	seat, ok := session.SeatOf(playerID)
	if !ok {
		unlock()
		return
	}

	session.PlayerAt(seat).Connected = false
	session.Touch()

	if err = that.commitSession(ctx, session); err != nil {
		log.Error("failed to persist disconnect", "error", err)
	}

	if !session.IsPlaying() {
		that.removeFromPool(session.ID)
		that.finishWaitingSession(ctx, session)
		unlock()
		return
	}

	that.notifier.StateUpdate(session)
	unlock()

	sessionID := session.ID
	that.scheduler.Schedule(graceKey(playerID), that.conf.ReconnectGrace, func() {
		that.expireReconnectGrace(sessionID, playerID)
	})

	log.Info("reconnection grace started", "sessionID", sessionID)
}

// expireReconnectGrace - ends the session if the seat never came back.
// Re-validates under the lock: a reconnect may have landed first.
func (that *gameplayService) expireReconnectGrace(sessionID, playerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
	defer cancel()

	unlock, session, err := that.lockSession(ctx, sessionID)
	if err != nil {
		return
	}
	defer unlock()

	seat, ok := session.SeatOf(playerID)
	if !ok || !session.IsPlaying() {
		return
	}

	if session.PlayerAt(seat).Connected {
		return
	}

	winnerSeat := session.OpponentSeat(seat)
	session.Finish(entity.OutcomeAbandoned, &winnerSeat, nil)
	that.finishSession(ctx, session)
}

// Reconnect - re-associates a fresh connection with an existing seat
// within the grace period.
func (that *gameplayService) Reconnect(ctx context.Context, playerID, sessionID string) (*entity.Session, error) {
	unlock, session, err := that.lockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	seat, ok := session.SeatOf(playerID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrPlayerNotFound, playerID)
	}

	if session.IsFinished() {
		return nil, apperror.ErrSessionFinished
	}

	// Cancel the grace timer before touching state so it cannot race the
	// reconnect.
	that.scheduler.Cancel(graceKey(playerID))

	session.PlayerAt(seat).Connected = true
	session.Touch()

	if err = that.commitSession(ctx, session); err != nil {
		return nil, err
	}

	that.notifier.StateUpdate(session)

	return session, nil
}

// RunSweeper - periodically evicts finished sessions and idle playing
// sessions, independent of explicit disconnect notifications.
func (that *gameplayService) RunSweeper(ctx context.Context) {
	log := that.logger.With("method", "RunSweeper")

	log.Info("session sweeper started", "interval", that.conf.SweepInterval)

	ticker := time.NewTicker(that.conf.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			that.sweep(ctx)
			that.pending.Expire(that.scheduler.Now())
		}
	}
}

func (that *gameplayService) sweep(ctx context.Context) {
	log := that.logger.With("method", "sweep")

	ids, err := that.sessionService.ListSessionIDs(ctx)
	if err != nil {
		log.Error("failed to list sessions", "error", err)
		return
	}

	for _, id := range ids {
		unlock, session, lockErr := that.lockSession(ctx, id)
		if lockErr != nil {
			continue
		}

		switch {
		case session.IsFinished():
			that.sessionService.CleanupSession(ctx, session)
		case session.IsPlaying() && that.scheduler.Now().Sub(session.LastActivity) > that.conf.IdleTimeout:
			session.Finish(entity.OutcomeAbandoned, nil, nil)
			that.finishSession(ctx, session)
		}

		unlock()
	}
}

// beginTurn - arms the turn timer for the current seat; fired after the
// state snapshot so clients see the turn before the countdown.
func (that *gameplayService) beginTurn(session *entity.Session) {
	sessionID := session.ID
	seat := session.CurrentSeat

	that.scheduler.Schedule(turnKey(sessionID), that.conf.TurnTimeout, func() {
		that.handleTurnTimeout(sessionID, seat)
	})

	that.notifier.TurnTimerStarted(session, seat, that.conf.TurnTimeout)
}

// handleTurnTimeout - forces the default action for an unresponsive seat
// through the identical draw/discard code paths. The callback re-validates
// everything: the session may have moved on since the timer was armed.
func (that *gameplayService) handleTurnTimeout(sessionID string, seat int) {
	log := that.logger.With("method", "handleTurnTimeout", "sessionID", sessionID, "seat", seat)

	ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
	defer cancel()

	unlock, session, err := that.lockSession(ctx, sessionID)
	if err != nil {
		return
	}
	defer unlock()

	if !session.IsPlaying() || session.CurrentSeat != seat {
		return
	}

	player := session.PlayerAt(seat)
	if player == nil {
		return
	}

	switch len(player.Hand) {
	case entity.HandSizeDiscarding:
		tile := player.Hand[rand.Intn(len(player.Hand))] //nolint: gosec // tile pick, not crypto
		if err = that.discardTile(ctx, session, player.ID, tile, true); err != nil {
			log.Error("failed to force discard", "error", err)
		}
	case entity.HandSizeDrawing:
		if err = that.drawTile(ctx, session, player.ID, true, false); err != nil {
			log.Error("failed to force draw", "error", err)
		}
	default:
		log.Error("unexpected hand size on timeout", "size", len(player.Hand))
	}
}

// finishSession - terminal bookkeeping: stop timers, drop pending prompts,
// broadcast the outcome, evict.
func (that *gameplayService) finishSession(ctx context.Context, session *entity.Session) {
	that.scheduler.Cancel(turnKey(session.ID))
	for _, player := range session.Players {
		that.scheduler.Cancel(claimKey(player.ID))
		that.scheduler.Cancel(graceKey(player.ID))
		that.pending.DropByPlayer(player.ID)
	}

	that.notifier.SessionEnded(session)
	that.notifier.StateUpdate(session)
	that.sessionService.CleanupSession(ctx, session)
}

// finishWaitingSession - evicts a never-started session without a broadcast.
// A session that got paired while the caller was en route stays alive.
func (that *gameplayService) finishWaitingSession(ctx context.Context, session *entity.Session) {
	if !session.IsWaiting() {
		return
	}

	session.Finish(entity.OutcomeAbandoned, nil, nil)
	that.sessionService.CleanupSession(ctx, session)
}

func (that *gameplayService) removeFromPool(sessionID string) {
	that.poolMutex.Lock()
	defer that.poolMutex.Unlock()

	for i, id := range that.waitingPool {
		if id == sessionID {
			that.waitingPool = append(that.waitingPool[:i], that.waitingPool[i+1:]...)
			return
		}
	}
}

// lockSessionOf - resolves the player's session through the directory and
// locks it.
func (that *gameplayService) lockSessionOf(ctx context.Context, playerID string) (func(), *entity.Session, error) {
	session, err := that.sessionService.GetSessionByPlayerID(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}

	return that.lockSessionLoaded(ctx, session.ID)
}

func (that *gameplayService) lockSession(ctx context.Context, sessionID string) (func(), *entity.Session, error) {
	return that.lockSessionLoaded(ctx, sessionID)
}

// lockSessionLoaded - locks the session mutex, then reloads the session so
// the caller sees state committed by whoever held the lock before.
func (that *gameplayService) lockSessionLoaded(ctx context.Context, sessionID string) (func(), *entity.Session, error) {
	that.locksMutex.Lock()
	lock, ok := that.sessionLocks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		that.sessionLocks[sessionID] = lock
	}
	that.locksMutex.Unlock()

	lock.Lock()

	session, err := that.sessionService.GetSessionByID(ctx, sessionID)
	if err != nil {
		lock.Unlock()
		return nil, nil, err
	}

	unlock := func() {
		lock.Unlock()

		if session.IsFinished() {
			that.locksMutex.Lock()
			delete(that.sessionLocks, sessionID)
			that.locksMutex.Unlock()
		}
	}

	return unlock, session, nil
}

func turnKey(sessionID string) string {
	return "turn:" + sessionID
}

func claimKey(playerID string) string {
	return "claim:" + playerID
}

func graceKey(playerID string) string {
	return "grace:" + playerID
}
