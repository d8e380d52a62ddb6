package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gyeh/carecost/internal/config"
	"github.com/gyeh/carecost/internal/costcalc"
	"github.com/gyeh/carecost/internal/db"
	"github.com/gyeh/carecost/internal/fees"
	"github.com/gyeh/carecost/internal/geo"
	"github.com/gyeh/carecost/internal/metrics"
	"github.com/gyeh/carecost/internal/refcache"
)

const cachePrefix = "carecost:"

// engineDeps is an Engine plus the resources it holds open.
type engineDeps struct {
	engine  *costcalc.Engine
	closers []func()
}

func (d *engineDeps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// errDBConn marks failures to reach Postgres so the caller can pick the
// exit code.
type errDBConn struct{ err error }

func (e errDBConn) Error() string { return e.err.Error() }
func (e errDBConn) Unwrap() error { return e.err }

// buildEngine wires the engine from cfg. Without a DSN the engine runs on
// the fallback table alone. With one, Postgres stores back both lookups,
// fronted by a Redis cache when RedisAddr is set and an in-process cache
// otherwise.
func buildEngine(ctx context.Context, cfg *config.Config, log zerolog.Logger, m *metrics.Metrics) (*engineDeps, error) {
	deps := &engineDeps{}

	fallback := fees.DefaultFallbackTable()
	if cfg.FallbackTable != "" {
		t, err := fees.LoadFallbackTable(cfg.FallbackTable)
		if err != nil {
			return nil, err
		}
		fallback = t
	}
	log.Debug().Str("version", fallback.Version).Int("codes", fallback.Len()).Msg("fallback table loaded")

	var (
		feeSrc fees.Source
		geoSrc geo.Source
	)
	if cfg.DSN != "" {
		pool, err := db.NewPool(ctx, cfg.DSN)
		if err != nil {
			return nil, errDBConn{err}
		}
		deps.closers = append(deps.closers, pool.Close)
		var feeStore fees.Source = db.NewFeeStore(pool)
		var geoStore geo.Source = db.NewGeoStore(pool)
		feeSrc, geoSrc = feeStore, geoStore

		if cfg.CacheTTL > 0 {
			store := cacheStore(ctx, cfg, log, deps)
			feeSrc = refcache.NewFeeSource(feeStore, store, cfg.CacheTTL, log, m)
			geoSrc = refcache.NewGeoSource(geoStore, store, cfg.CacheTTL, log, m)
		}
	} else {
		log.Info().Msg("no database configured; fee lookups use the fallback table only")
	}

	feeSvc := fees.NewService(feeSrc, fallback,
		fees.WithTimeout(cfg.LookupTimeout), fees.WithLogger(log), fees.WithMetrics(m))
	geoSvc := geo.NewService(geoSrc,
		geo.WithTimeout(cfg.LookupTimeout), geo.WithLogger(log), geo.WithMetrics(m))

	spread := decimal.NewFromFloat(cfg.RangeSpread)
	deps.engine = costcalc.NewEngine(feeSvc, geoSvc, costcalc.Config{
		RangeSpread: spread,
		Concurrency: cfg.Concurrency,
	}, log, m)
	return deps, nil
}

// cacheStore connects to Redis when configured. An unreachable Redis
// degrades to the in-process store.
func cacheStore(ctx context.Context, cfg *config.Config, log zerolog.Logger, deps *engineDeps) refcache.Store {
	if cfg.RedisAddr == "" {
		return refcache.NewMemoryStore()
	}
	client, err := refcache.NewRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable; using in-process cache")
		return refcache.NewMemoryStore()
	}
	deps.closers = append(deps.closers, func() { closeRedis(client, log) })
	return refcache.NewRedisStore(client, cachePrefix)
}

func closeRedis(c *redis.Client, log zerolog.Logger) {
	if err := c.Close(); err != nil {
		log.Warn().Err(fmt.Errorf("close redis: %w", err)).Msg("cleanup failed")
	}
}
