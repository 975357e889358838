package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/partnerz-backend/api/controllers"
	"github.com/angelmondragon/partnerz-backend/api/routes"
	"github.com/angelmondragon/partnerz-backend/internal/coupons"
	"github.com/angelmondragon/partnerz-backend/internal/cron"
	"github.com/angelmondragon/partnerz-backend/internal/ledger"
	"github.com/angelmondragon/partnerz-backend/internal/partners"
	"github.com/angelmondragon/partnerz-backend/internal/rarity"
	"github.com/angelmondragon/partnerz-backend/internal/snapshot"
	"github.com/angelmondragon/partnerz-backend/pkg/config"
	"github.com/angelmondragon/partnerz-backend/pkg/db"
	"github.com/angelmondragon/partnerz-backend/pkg/env"
	"github.com/angelmondragon/partnerz-backend/pkg/instance"
	"github.com/angelmondragon/partnerz-backend/pkg/logger"
	"github.com/angelmondragon/partnerz-backend/pkg/metrics"
	"github.com/angelmondragon/partnerz-backend/pkg/migrate"
	"github.com/angelmondragon/partnerz-backend/pkg/redis"
)

const snapshotLockTTL = 2 * time.Minute

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	catalog, err := rarity.NewCatalog(cfg.Engine.Rarities...)
	if err != nil {
		logg.Error(ctx, "invalid rarity catalog", err)
		os.Exit(1)
	}
	directory := partners.NewDirectory(catalog, partners.WithSelector(newSelector(cfg.Engine, catalog)))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics := metrics.NewEngineMetrics(registry)
	cronMetrics := metrics.NewCronJobMetrics(registry)

	ledgerService, err := ledger.NewService(ledger.NewMemoryRepository(cfg.Engine.LedgerSize))
	if err != nil {
		logg.Error(ctx, "failed to create ledger service", err)
		os.Exit(1)
	}

	partnersService, err := partners.NewService(partners.ServiceParams{
		Directory: directory,
		Ledger:    ledgerService,
		Metrics:   engineMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create partners service", err)
		os.Exit(1)
	}

	readiness := map[string]controllers.Pinger{}
	routerParams := routes.RouterParams{
		Config:    cfg,
		Logger:    logg,
		Partners:  partnersService,
		Gatherer:  registry,
		Readiness: readiness,
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		readiness["redis"] = redisClient
		routerParams.Idempotency = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, idempotent replay disabled")
	}

	var dbClient *db.Client
	if cfg.Snapshot.Store == config.SnapshotStoreGorm {
		dbClient, err = db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		readiness["database"] = dbClient
		if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run migrations", err)
			os.Exit(1)
		}
	}

	closeClients := func() {
		var closeErr error
		if dbClient != nil {
			closeErr = multierr.Append(closeErr, dbClient.Close())
		}
		if redisClient != nil {
			closeErr = multierr.Append(closeErr, redisClient.Close())
		}
		if closeErr != nil {
			logg.Error(context.Background(), "error closing clients", closeErr)
		}
	}
	defer closeClients()

	store, err := newSnapshotStore(cfg, dbClient, redisClient)
	if err != nil {
		logg.Error(ctx, "failed to create snapshot store", err)
		os.Exit(1)
	}

	var snapshots *cron.Service
	if store != nil {
		if cfg.Snapshot.RestoreOnBoot {
			restoreDirectory(ctx, logg, store, partnersService)
		}
		snapshots, err = newSnapshotService(cfg, logg, cronMetrics, store, partnersService, redisClient)
		if err != nil {
			logg.Error(ctx, "failed to create snapshot scheduler", err)
			os.Exit(1)
		}
		go func() {
			if err := snapshots.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(ctx, "snapshot scheduler stopped", err)
			}
		}()
	}
	engineMetrics.SetMembers(directory.Len())

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(routerParams),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			closeClients()
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.App.ShutdownTimeout)
	defer cancel()

	logg.Info(shutdownCtx, "shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "graceful shutdown failed", err)
	}

	if snapshots != nil {
		if err := snapshots.RunJob(shutdownCtx, cron.SnapshotJobName); err != nil {
			logg.Error(shutdownCtx, "final snapshot failed", err)
		}
	}
}

func newSelector(cfg config.EngineConfig, catalog *rarity.Catalog) coupons.Selector {
	src := coupons.NewSource(cfg.RandomSeed)
	if strings.EqualFold(cfg.DrawPolicy, config.DrawPolicyWeighted) {
		return coupons.NewRarityWeightedSelector(catalog, src)
	}
	return coupons.NewUniformSelector(src)
}

// newSnapshotStore returns nil when snapshots are disabled.
func newSnapshotStore(cfg *config.Config, dbClient *db.Client, redisClient *redis.Client) (snapshot.Store, error) {
	switch cfg.Snapshot.Store {
	case config.SnapshotStoreGorm:
		return snapshot.NewGormStore(dbClient, 0)
	case config.SnapshotStoreRedis:
		return snapshot.NewRedisStore(redisClient, redisClient.SnapshotKey(cfg.Snapshot.RedisKey))
	}
	return nil, nil
}

func restoreDirectory(ctx context.Context, logg *logger.Logger, store snapshot.Store, svc partners.Service) {
	state, err := store.Load(ctx)
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		logg.Info(ctx, "no directory snapshot to restore")
		return
	}
	if err != nil {
		logg.Error(ctx, "failed to load directory snapshot", err)
		return
	}
	if err := svc.Restore(ctx, state); err != nil {
		logg.Error(ctx, "directory snapshot rejected", err)
		return
	}
	restoreCtx := logg.WithFields(ctx, map[string]any{
		"members":       len(state.Members),
		"ledger_events": len(state.Ledger),
		"taken_at":      state.TakenAt,
	})
	logg.Info(restoreCtx, "directory restored from snapshot")
}

func newSnapshotService(
	cfg *config.Config,
	logg *logger.Logger,
	cronMetrics *metrics.CronJobMetrics,
	store snapshot.Store,
	source cron.SnapshotSource,
	redisClient *redis.Client,
) (*cron.Service, error) {
	job, err := cron.NewSnapshotJob(cron.SnapshotJobParams{
		Logger: logg,
		Source: source,
		Store:  store,
	})
	if err != nil {
		return nil, err
	}

	var lock cron.Lock = &cron.LocalLock{}
	if redisClient != nil {
		lock, err = cron.NewRedisLock(redisClient, redisClient.LockKey("snapshot"), snapshotLockTTL)
		if err != nil {
			return nil, err
		}
	}

	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(job),
		Lock:     lock,
		Metrics:  cronMetrics,
		Interval: cfg.Snapshot.Interval,
	})
}
