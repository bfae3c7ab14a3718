package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/internal/config"
	"Storefront/pkg/kit"
)

const service = "catalog"

func main() {
	cfg, err := config.Load(nil)
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	storage, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal("open storage failed", zap.Error(err), zap.String("driver", cfg.StorageDriver))
	}
	defer closeStorage()

	events, closeEvents := openPublisher(cfg, log)
	defer closeEvents()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store := catalog.NewKVStore(storage,
		catalog.WithKey(cfg.StorageKey),
		catalog.WithPublisher(events),
		catalog.WithLogger(log),
	)

	s := &catalog.Server{
		Service:      catalog.NewService(store, log, catalog.NewMetrics(reg)),
		Log:          log,
		WriteLimiter: kit.NewIPRateLimiter(cfg.WriteLimit, cfg.WriteWindow),
	}
	if cfg.AdminJWTSecret != "" {
		s.Tokens = catalog.NewTokenMaker(cfg.AdminJWTSecret)
	} else {
		log.Info("ADMIN_JWT_SECRET not set, admin routes disabled")
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	log.Info("catalog configured",
		zap.String("storage", cfg.StorageDriver),
		zap.String("key", cfg.StorageKey),
		zap.Bool("admin", s.Tokens != nil),
	)

	if err := kit.RunHTTPServer(ctx, ":"+cfg.Port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openStorage(ctx context.Context, cfg config.Config) (catalog.Storage, func(), error) {
	noop := func() {}

	switch cfg.StorageDriver {
	case config.DriverFile:
		s, err := catalog.NewFileStorage(cfg.StorageDir)
		return s, noop, err

	case config.DriverPostgres:
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		s := catalog.NewPostgresStorage(db)
		if err := s.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("migrate: %w", err)
		}
		return s, func() { _ = db.Close() }, nil

	case config.DriverSQLite:
		s, err := catalog.OpenSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil

	default:
		return catalog.NewMemStorage(), noop, nil
	}
}

// openPublisher falls back to dropping events when the broker is not
// configured or unreachable; catalog writes never depend on it.
func openPublisher(cfg config.Config, log *zap.Logger) (catalog.Publisher, func()) {
	if cfg.RabbitMQURL == "" {
		return catalog.NopPublisher{}, func() {}
	}

	p, err := catalog.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsQueue)
	if err != nil {
		log.Warn("event publisher unavailable, events disabled", zap.Error(err))
		return catalog.NopPublisher{}, func() {}
	}

	log.Info("publishing catalog events", zap.String("queue", cfg.EventsQueue))
	return p, func() {
		if err := p.Close(); err != nil {
			log.Warn("close event publisher", zap.Error(err))
		}
	}
}
