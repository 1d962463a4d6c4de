package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/config"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/events"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/repository"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/scheduler"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/tui"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-hotseat/transport/rest"
	"github.com/rocketscienceinc/tictactoe-hotseat/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the REST and WebSocket servers until a signal arrives.
func RunApp(parent context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedis(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	appMetrics := metrics.New()
	matchRepo := repository.NewMatchRepository(redisStorage, conf.Redis.MatchTTL)

	producer, err := events.NewProducer(conf.Kafka.Brokers, conf.Kafka.Topic)
	if err != nil {
		return fmt.Errorf("could not create event producer: %w", err)
	}

	defer func() {
		if err = producer.Close(); err != nil {
			log.Error("could not close event producer", "error", err)
		}
	}()

	var matchManager *usecase.MatchManager

	if conf.Postgres.Enabled() {
		pool, pgErr := storage.NewPostgres(ctx, conf.Postgres.DSN)
		if pgErr != nil {
			return fmt.Errorf("could not connect to postgres: %w", pgErr)
		}
		defer pool.Close()

		roundRepo := repository.NewRoundRepository(pool)
		matchManager = usecase.NewMatchManager(logger, matchRepo, roundRepo, producer, appMetrics)

		pruner := scheduler.NewPruner(logger, roundRepo, conf.Archive.Retention)
		if err = pruner.Start(conf.Archive.PruneSchedule); err != nil {
			return fmt.Errorf("could not start archive pruner: %w", err)
		}
		defer pruner.Stop()
	} else {
		log.Info("Round archive disabled, no postgres dsn configured")
		matchManager = usecase.NewMatchManager(logger, matchRepo, nil, producer, appMetrics)
	}

	httpServer := rest.NewServer(conf.HTTPPort, rest.NewRouter(logger, matchManager, appMetrics.Handler()))
	wsServer := rest.NewServer(conf.SocketPort, websocket.New(logger, matchManager).Router())
	// sockets are long-lived
	wsServer.ReadTimeout, wsServer.WriteTimeout = 0, 0

	errCh := make(chan error, 2)

	// run HTTP server
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		errCh <- serve(httpServer, "HTTP")
	}()

	// run Websocket server
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		errCh <- serve(wsServer, "WebSocket")
	}()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	shutdownErr := errors.Join(httpServer.Shutdown(shutdownCtx), wsServer.Shutdown(shutdownCtx))
	if shutdownErr != nil {
		log.Error("could not shut down servers", "error", shutdownErr)
	}

	return err
}

func serve(server *http.Server, name string) error {
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server error: %w", name, err)
	}

	return nil
}

// RunLocal - runs a hot-seat game in the terminal.
func RunLocal(playerOne, playerTwo string) error {
	return tui.Run(playerOne, playerTwo)
}
