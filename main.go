package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"holdemd/audit"
	"holdemd/config"
	"holdemd/domain"
	"holdemd/game"
	"holdemd/hands"
	"holdemd/server"
	"holdemd/server/connection"
	srvevents "holdemd/server/events"
	"holdemd/server/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tableID := uuid.New().String()

	auditLog, err := audit.OpenLog(cfg.AuditDir, tableID, logger)
	if err != nil {
		logger.Fatal("opening audit log", zap.Error(err))
	}
	defer auditLog.Close()

	var store *audit.Store
	if cfg.AuditDatabaseURL != "" {
		store, err = audit.OpenStore(ctx, cfg.AuditDatabaseURL)
		if err != nil {
			logger.Fatal("connecting audit store", zap.Error(err))
		}
		if err := store.Migrate(ctx); err != nil {
			logger.Fatal("migrating audit store", zap.Error(err))
		}
		defer store.Close()
	}

	rules := domain.TableRules{
		SmallBlind:    cfg.SmallBlind,
		BigBlind:      cfg.BigBlind,
		MaxSeats:      cfg.MaxSeats,
		TurnTimeout:   cfg.TurnTimeout,
		NextHandDelay: cfg.NextHandDelay,
	}
	table := domain.NewTable(tableID, cfg.TableName, rules, hands.New(), nil, logger)
	loop := game.NewLoop(ctx, table, auditLog, store, logger)

	connMgr := connection.NewManager(logger)
	dispatcher := srvevents.NewDispatcher(table, connMgr, logger)
	table.RegisterEventHandler(dispatcher.HandleEvent)
	loop.SetBroadcast(dispatcher.BroadcastSnapshots)

	router := handlers.NewCommandRouter(loop, connMgr, cfg.StartingStack, cfg.HostToken, logger)

	loop.Start()
	defer loop.Stop()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		cancel()
		os.Exit(0)
	}()

	srv := server.New(loop, connMgr, router, cfg.HostToken, cfg.Debug, logger)
	logger.Info("starting table",
		zap.String("table", tableID),
		zap.String("name", cfg.TableName),
		zap.Int("small_blind", cfg.SmallBlind),
		zap.Int("big_blind", cfg.BigBlind),
	)
	if err := srv.Start(cfg.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
