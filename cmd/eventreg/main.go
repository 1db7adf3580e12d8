package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	v1 "github.com/aevon-lab/eventreg/internal/api/v1"
	"github.com/aevon-lab/eventreg/internal/config"
	"github.com/aevon-lab/eventreg/internal/core/storage"
	"github.com/aevon-lab/eventreg/internal/core/storage/memory"
	"github.com/aevon-lab/eventreg/internal/core/storage/postgres"
	"github.com/aevon-lab/eventreg/internal/ledger"
	"github.com/aevon-lab/eventreg/internal/ledger/redisstream"
	"github.com/aevon-lab/eventreg/internal/migrations"
	"github.com/aevon-lab/eventreg/internal/registration"
	"github.com/aevon-lab/eventreg/internal/server"
	"github.com/redis/rueidis"
)

// seeder is implemented by both registration stores.
type seeder interface {
	SeedEvent(ctx context.Context, occ v1.Occurrence, name string, capacity int) error
	SeedAttendee(ctx context.Context, attendeeID, email string) error
}

type registrationStore interface {
	storage.RegistrationStore
	storage.Directory
	seeder
}

type components struct {
	store     registrationStore
	balances  ledger.BalanceStore
	stream    ledger.ChangeStream
	creditLog ledger.CreditLog
	closers   []func() error
}

func main() {
	configPath := flag.String("config", "eventreg.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// 0. Initialize Logger
	handlerOpts := &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("Loaded config",
		"environment", cfg.Environment,
		"database", cfg.Database.Type,
		"ledger_source", cfg.Ledger.Source)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), cfg.Server.Mode)

	// 1. Initialize Storage
	comps, err := buildComponents(ctx, cfg, srv)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer comps.close()

	// 2. Seed reference data
	if err := seed(ctx, comps.store, cfg.Seed); err != nil {
		slog.Error("Failed to seed reference data", "error", err)
		os.Exit(1)
	}

	// 3. Initialize Services
	registrationSvc := registration.NewService(comps.store, comps.store, cfg.Server.MaxBodySizeMB)
	registrationSvc.RegisterRoutes(srv.Engine)

	ledgerSvc := ledger.NewService(comps.balances, comps.creditLog, cfg.Server.MaxBodySizeMB)
	ledgerSvc.RegisterRoutes(srv.Engine)

	// 4. Start the ledger scheduler
	if cfg.Ledger.Enabled {
		aggregator := ledger.NewAggregator(comps.balances, ledger.Options{
			WorkerCount:  cfg.Ledger.WorkerCount,
			MaxAttempts:  cfg.Ledger.MaxAttempts,
			RetryBackoff: cfg.Ledger.RetryBackoff,
		})
		scheduler := ledger.NewScheduler(cfg.Ledger.Interval, cfg.Ledger.BatchSize, comps.stream, aggregator)
		go func() {
			if err := scheduler.Start(ctx); err != nil {
				slog.Error("Ledger scheduler stopped with error", "error", err)
			}
		}()
		slog.Info("Ledger scheduler initialized",
			"interval", cfg.Ledger.Interval,
			"batch_size", cfg.Ledger.BatchSize,
			"worker_count", cfg.Ledger.WorkerCount)
	} else {
		slog.Info("Ledger scheduler disabled by config")
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func buildComponents(ctx context.Context, cfg *config.Config, srv *server.Server) (*components, error) {
	comps := &components{}

	switch cfg.Database.Type {
	case "memory":
		store := memory.NewStore()
		log := memory.NewCreditLog()
		comps.store = store
		comps.balances = memory.NewBalances()
		comps.stream = log
		comps.creditLog = log

	case "postgres":
		adapter, err := postgres.NewAdapter(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			return nil, err
		}
		comps.closers = append(comps.closers, adapter.Close)

		if err := migrations.Run(adapter.DB(), cfg.Database.AutoMigrate); err != nil {
			comps.close()
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		if err := adapter.ValidateSchema(ctx); err != nil {
			comps.close()
			return nil, err
		}

		stream := postgres.NewCreditStream(adapter.DB(), cfg.Ledger.Stream)
		comps.store = adapter
		comps.balances = postgres.NewBalanceAdapter(adapter.DB())
		comps.stream = stream
		comps.creditLog = stream
		srv.AddHealthCheck("database", server.PingFunc(adapter.DB().PingContext))
	}

	if cfg.Ledger.Source == "redis" {
		client, err := rueidis.NewClient(rueidis.ClientOption{InitAddress: []string{cfg.Redis.Addr}})
		if err != nil {
			comps.close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		comps.closers = append(comps.closers, func() error { client.Close(); return nil })

		stream, err := redisstream.New(ctx, client, redisstream.Options{
			Key:      cfg.Redis.Stream,
			Group:    cfg.Redis.Group,
			Consumer: cfg.Redis.Consumer,
			Block:    cfg.Redis.Block,
		})
		if err != nil {
			comps.close()
			return nil, err
		}
		comps.stream = stream
		comps.creditLog = stream
		srv.AddHealthCheck("redis", server.PingFunc(func(ctx context.Context) error {
			return client.Do(ctx, client.B().Ping().Build()).Error()
		}))
	}

	return comps, nil
}

func (c *components) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			slog.Warn("Failed to close resource", "error", err)
		}
	}
	c.closers = nil
}

func seed(ctx context.Context, s seeder, cfg config.SeedConfig) error {
	for _, e := range cfg.Events {
		occ := v1.Occurrence{EventID: e.EventID, Year: e.Year}
		if err := s.SeedEvent(ctx, occ, e.Name, e.Capacity); err != nil {
			return fmt.Errorf("seed event %s/%d: %w", e.EventID, e.Year, err)
		}
	}
	for _, a := range cfg.Attendees {
		if err := s.SeedAttendee(ctx, a.AttendeeID, a.Email); err != nil {
			return fmt.Errorf("seed attendee %s: %w", a.AttendeeID, err)
		}
	}
	if len(cfg.Events)+len(cfg.Attendees) > 0 {
		slog.Info("Seeded reference data", "events", len(cfg.Events), "attendees", len(cfg.Attendees))
	}
	return nil
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
