package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cbodonnell/cardtable/pkg/api"
	"github.com/cbodonnell/cardtable/pkg/config"
	"github.com/cbodonnell/cardtable/pkg/game"
	"github.com/cbodonnell/cardtable/pkg/log"
	"github.com/cbodonnell/cardtable/pkg/network"
	"github.com/cbodonnell/cardtable/pkg/repositories"
	"github.com/cbodonnell/cardtable/pkg/workers"
)

const saveRoomChannelSize = 256

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	parsedLogLevel, err := log.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repository := newRepository(ctx, cfg)
	defer repository.Close(ctx)

	connectionManager := network.NewConnectionManager(network.NewConnectionManagerOptions{
		SendTimeout: cfg.SendTimeout,
	})

	registry := game.NewRegistry()
	saveRoomChan := make(chan game.SaveRoomStateRequest, saveRoomChannelSize)

	manager := game.NewGameManager(game.NewGameManagerOptions{
		Registry:     registry,
		Repository:   repository,
		Sink:         connectionManager,
		SaveRoomChan: saveRoomChan,
	})

	saveWorker := workers.NewRoomSaveWorker(workers.NewRoomSaveWorkerOptions{
		Repository:   repository,
		SaveRoomChan: saveRoomChan,
	})
	go saveWorker.Start(ctx)

	connectionEventWorker := workers.NewConnectionEventWorker(workers.NewConnectionEventWorkerOptions{
		ConnectionEventChan: connectionManager.EventChan(),
		Manager:             manager,
	})
	go connectionEventWorker.Start(ctx)

	evictionWorker := workers.NewRoomEvictionWorker(workers.NewRoomEvictionWorkerOptions{
		Registry:    registry,
		Connections: connectionManager,
		RoomTTL:     cfg.RoomTTL,
		Interval:    cfg.EvictionInterval,
	})
	go evictionWorker.Start(ctx)

	gateway := network.NewWSGateway(network.NewWSGatewayOptions{
		Connections:    connectionManager,
		Handler:        manager.HandleCommand,
		OriginPatterns: cfg.CORSOrigins,
	})

	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:        cfg.HTTPPort,
		CORSOrigins: cfg.CORSOrigins,
		Manager:     manager,
		Gateway:     gateway,
	})

	go func() {
		<-ctx.Done()
		if err := apiServer.Stop(context.Background()); err != nil {
			log.Error("Failed to stop API server: %v", err)
		}
	}()

	apiServer.Start()
}

func newRepository(ctx context.Context, cfg *config.Config) repositories.Repository {
	switch cfg.DatabaseDriver {
	case "sqlite3":
		repository, err := repositories.NewSQLiteRepository(ctx, cfg.DatabaseURL)
		if err != nil {
			panic(fmt.Sprintf("Failed to open sqlite repository: %v", err))
		}
		return repository
	case "postgres":
		repository, err := repositories.NewPostgresRepository(ctx, cfg.DatabaseURL)
		if err != nil {
			panic(fmt.Sprintf("Failed to connect to postgres repository: %v", err))
		}
		return repository
	default:
		panic(fmt.Sprintf("Unknown database driver: %s", cfg.DatabaseDriver))
	}
}
