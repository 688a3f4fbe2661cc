package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/truthmarkets/marketd/internal/blob/s3"
	"github.com/truthmarkets/marketd/internal/cache/redis"
	"github.com/truthmarkets/marketd/internal/config"
	"github.com/truthmarkets/marketd/internal/domain"
	"github.com/truthmarkets/marketd/internal/engine"
	"github.com/truthmarkets/marketd/internal/ledger"
	"github.com/truthmarkets/marketd/internal/server/handler"
	"github.com/truthmarkets/marketd/internal/store/memory"
	"github.com/truthmarkets/marketd/internal/store/postgres"
)

// Dependencies bundles everything the application modes need to operate. It
// is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Store    domain.Store
	Ledger   domain.Ledger
	Prices   domain.PriceCache
	Bus      domain.EventBus
	Archiver domain.SettlementArchiver
	Engine   *engine.Engine

	// Health registers connectivity checks for the backing services; demo
	// mode has none.
	Health map[string]handler.Pinger
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Health: map[string]handler.Pinger{},
	}

	if strings.ToLower(cfg.Mode) == "demo" {
		// Demo mode runs fully in process: in-memory store, recorded
		// transfers, no cache, bus, or archive.
		deps.Store = memory.New()
		deps.Ledger = ledger.NewRecording()
	} else {
		// --- PostgreSQL ---
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.Store = postgres.NewStore(pgClient)
		deps.Health["postgres"] = pgxPinger{pgClient}

		// --- Redis ---
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.Prices = redis.NewPriceCache(redisClient)
		deps.Bus = redis.NewEventBus(redisClient)
		deps.Health["redis"] = redisClient

		// --- S3 ---
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client))
		deps.Health["s3"] = s3Pinger{s3Client}

		// Settlement disbursements are logged until a fund-moving backend
		// is connected.
		deps.Ledger = ledger.NewLogging(logger)
	}

	deps.Engine = engine.New(
		engine.Config{FeeBps: uint32(cfg.Market.FeeBps)},
		deps.Store,
		deps.Ledger,
		deps.Prices,
		deps.Bus,
		deps.Archiver,
		logger,
	)

	return deps, cleanup, nil
}

// pgxPinger adapts the postgres client to the health Pinger interface.
type pgxPinger struct {
	c *postgres.Client
}

func (p pgxPinger) Ping(ctx context.Context) error {
	return p.c.Pool().Ping(ctx)
}

// s3Pinger adapts the s3 client's HeadBucket health check.
type s3Pinger struct {
	c *s3blob.Client
}

func (p s3Pinger) Ping(ctx context.Context) error {
	return p.c.Health(ctx)
}
