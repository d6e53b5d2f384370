package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/config"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/service"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-minimax/transport/rest"
	"github.com/rocketscienceinc/tictactoe-minimax/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis host is empty")

// RunApp - runs the application until a signal arrives or a server fails.
// It returns after both servers have shut down and Redis is closed.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	if conf.Redis.Host == "" {
		return ErrAddrNotFound
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr(), conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if closeErr := redisStorage.Close(); closeErr != nil {
			log.Error("could not close redis storage", "error", closeErr)
		}
	}()

	gameUseCase := newGameUseCase(logger, redisStorage, conf)

	var servers sync.WaitGroup
	errCh := make(chan error, 2)

	// run HTTP server
	servers.Add(1)
	go func() {
		defer servers.Done()

		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.New(logger, gameUseCase).Start(ctx, conf.HTTPPort); httpErr != nil {
			errCh <- fmt.Errorf("HTTP server error: %w", httpErr)
		}
	}()

	// run Websocket server
	servers.Add(1)
	go func() {
		defer servers.Done()

		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if wsErr := websocket.New(logger, gameUseCase).Start(ctx, conf.SocketPort); wsErr != nil {
			errCh <- fmt.Errorf("WebSocket server error: %w", wsErr)
		}
	}()

	var runErr error
	select {
	case runErr = <-errCh:
		log.Error("server failed, shutting down", "error", runErr)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	// the other server drains before Redis is closed by the deferred call
	cancel()
	servers.Wait()

	log.Info("servers stopped")

	return runErr
}

func newGameUseCase(logger *slog.Logger, redisStorage *storage.RedisStorage, conf *config.Config) usecase.GameUseCase {
	playerRepo := repository.NewPlayerRepository(redisStorage.Connection, conf.Game.TTL)
	gameRepo := repository.NewGameRepository(redisStorage.Connection, conf.Game.TTL)

	playerService := service.NewPlayerService(playerRepo)
	gameService := service.NewGameService(gameRepo)
	gamePlayService := service.NewGamePlayService(logger, playerService, gameService, service.NewBotService())

	return usecase.NewGameUseCase(playerService, gameService, gamePlayService)
}
