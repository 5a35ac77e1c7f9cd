package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tilematch-backend/internal/config"
	"github.com/rocketscienceinc/tilematch-backend/internal/judge"
	"github.com/rocketscienceinc/tilematch-backend/internal/repository"
	"github.com/rocketscienceinc/tilematch-backend/internal/repository/storage"
	"github.com/rocketscienceinc/tilematch-backend/internal/service"
	"github.com/rocketscienceinc/tilematch-backend/transport/rest"
	"github.com/rocketscienceinc/tilematch-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	playerRepo := repository.NewPlayerRepository(redisStorage.Connection)
	sessionRepo := repository.NewSessionRepository(redisStorage.Connection)

	playerService := service.NewPlayerService(playerRepo)
	sessionService := service.NewSessionService(logger, sessionRepo, playerService)

	engine := judge.NewEngine(logger)
	scheduler := service.NewTurnScheduler(service.NewRealClock())

	gameplayService := service.NewGameplayService(logger, playerService, sessionService, engine, scheduler, service.GameConfig{
		TurnTimeout:    conf.Game.TurnTimeout,
		QueryTimeout:   conf.Game.QueryTimeout,
		ReconnectGrace: conf.Game.ReconnectGrace,
		IdleTimeout:    conf.Game.IdleTimeout,
		SweepInterval:  conf.Game.SweepInterval,
	})

	go gameplayService.RunSweeper(ctx)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameplayService)
		gameplayService.SetNotifier(wsServer)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
