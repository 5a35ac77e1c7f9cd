package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rocketscienceinc/tilematch-backend/internal/pkg"
	"github.com/rocketscienceinc/tilematch-backend/internal/service"
)

// Server speaks the game protocol over raw WebSocket frames. Each inbound
// message implicitly carries the sender's connection identity; the identity
// is bound to a player id by the join and attempt-reconnect actions.
type Server struct {
	logger   *slog.Logger
	gameplay service.GameplayService

	handlers map[string]func(ctx context.Context, message *Message, bufrw *bufio.ReadWriter) error

	connectionsMutex sync.RWMutex
	connections      map[string]*bufio.ReadWriter
	identities       map[*bufio.ReadWriter]string

	// writeLocks serializes frame writes per connection: notifier broadcasts
	// fire from timer goroutines while the reader goroutine sends responses.
	writeLocksMutex sync.Mutex
	writeLocks      map[*bufio.ReadWriter]*sync.Mutex
}

func New(logger *slog.Logger, gameplay service.GameplayService) *Server {
	server := &Server{
		logger:   logger,
		gameplay: gameplay,

		handlers:    make(map[string]func(context.Context, *Message, *bufio.ReadWriter) error),
		connections: make(map[string]*bufio.ReadWriter),
		identities:  make(map[*bufio.ReadWriter]string),
		writeLocks:  make(map[*bufio.ReadWriter]*sync.Mutex),
	}

	server.handlers[actionJoin] = server.handleJoin
	server.handlers[actionDrawTile] = server.handleDrawTile
	server.handlers[actionDiscardTile] = server.handleDiscardTile
	server.handlers[actionDeclareWaiting] = server.handleDeclareWaiting
	server.handlers[actionDeclareWin] = server.handleDeclareWin
	server.handlers[actionRequestNewSession] = server.handleRequestNewSession
	server.handlers[actionAttemptReconnect] = server.handleAttemptReconnect

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	if req.Header.Get("Upgrade") != "websocket" {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	key := req.Header.Get("Sec-WebSocket-Key")
	acceptKey := pkg.GenerateAcceptKey(key)

	writer.Header().Set("Upgrade", "websocket")
	writer.Header().Set("Connection", "Upgrade")
	writer.Header().Set("Sec-WebSocket-Accept", acceptKey)
	writer.WriteHeader(http.StatusSwitchingProtocols)

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking")
		return
	}

	conn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		return
	}

	defer conn.Close()

	log.Info("WebSocket connection established")

	if err = that.handleMessages(ctx, bufrw); err != nil {
		log.Debug("connection closed", "error", err)
	}

	that.handleDisconnect(ctx, bufrw)
}

// handleMessages - processes messages from the client until the connection
// drops.
func (that *Server) handleMessages(ctx context.Context, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleMessages")

	for {
		reqBody, err := that.readRequest(bufrw)
		if err != nil {
			return err
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			if err = that.sendErrorResponse(bufrw, message.Action, reasonUnknownAction); err != nil {
				return err
			}
			continue
		}

		if err = handler(ctx, &message, bufrw); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// bindIdentity - associates the connection with a player id, replacing any
// stale connection the player left behind.
func (that *Server) bindIdentity(playerID string, bufrw *bufio.ReadWriter) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	if stale, ok := that.connections[playerID]; ok && stale != bufrw {
		delete(that.identities, stale)
	}

	that.connections[playerID] = bufrw
	that.identities[bufrw] = playerID
}

// identityOf - the player id bound to the connection, if any.
func (that *Server) identityOf(bufrw *bufio.ReadWriter) (string, bool) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	playerID, ok := that.identities[bufrw]

	return playerID, ok
}

func (that *Server) connectionOf(playerID string) (*bufio.ReadWriter, bool) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	conn, ok := that.connections[playerID]

	return conn, ok
}

// writeLockOf - the mutex serializing frame writes to the connection.
func (that *Server) writeLockOf(bufrw *bufio.ReadWriter) *sync.Mutex {
	that.writeLocksMutex.Lock()
	defer that.writeLocksMutex.Unlock()

	lock, ok := that.writeLocks[bufrw]
	if !ok {
		lock = &sync.Mutex{}
		that.writeLocks[bufrw] = lock
	}

	return lock
}

// handleDisconnect - unbinds the dropped connection and hands the identity
// to the gameplay service for the reconnection grace protocol.
func (that *Server) handleDisconnect(ctx context.Context, bufrw *bufio.ReadWriter) {
	log := that.logger.With("method", "handleDisconnect")

	that.writeLocksMutex.Lock()
	delete(that.writeLocks, bufrw)
	that.writeLocksMutex.Unlock()

	that.connectionsMutex.Lock()
	playerID, ok := that.identities[bufrw]
	if ok {
		delete(that.identities, bufrw)
		if current, bound := that.connections[playerID]; bound && current == bufrw {
			delete(that.connections, playerID)
		}
	}
	that.connectionsMutex.Unlock()

	if !ok {
		return
	}

	log.Info("player disconnected", "playerID", playerID)
	that.gameplay.HandleDisconnect(ctx, playerID)
}
