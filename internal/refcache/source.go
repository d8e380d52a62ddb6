package refcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/gyeh/carecost/internal/fees"
	"github.com/gyeh/carecost/internal/geo"
	"github.com/gyeh/carecost/internal/metrics"
	"github.com/gyeh/carecost/internal/model"
)

// DefaultTTL is used when a cache is built with a zero ttl.
const DefaultTTL = 15 * time.Minute

type cache struct {
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	log     zerolog.Logger
	metrics *metrics.Metrics
	kind    string
}

func newCache(kind string, store Store, ttl time.Duration, log zerolog.Logger, m *metrics.Metrics) *cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &cache{store: store, ttl: ttl, log: log, metrics: m, kind: kind}
}

// readThrough serves key from the store, or loads it once across concurrent
// callers and stores the result. Not-found results are cached as JSON null.
// Store failures are logged and bypassed.
func readThrough[T any](ctx context.Context, c *cache, key string, load func(context.Context) (*T, error)) (*T, error) {
	if data, ok, err := c.store.Get(ctx, key); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok {
		var v *T
		if err := json.Unmarshal(data, &v); err == nil {
			c.metrics.ObserveCache(c.kind, true)
			return v, nil
		}
		c.log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	}
	c.metrics.ObserveCache(c.kind, false)

	res, err, _ := c.group.Do(key, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err == nil {
			if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
				c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
			}
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*T), nil
}

// FeeSource caches a fees.Source.
type FeeSource struct {
	next  fees.Source
	cache *cache
}

// NewFeeSource wraps next with store.
func NewFeeSource(next fees.Source, store Store, ttl time.Duration, log zerolog.Logger, m *metrics.Metrics) *FeeSource {
	return &FeeSource{next: next, cache: newCache(metrics.KindFee, store, ttl, log, m)}
}

// LookupFee implements fees.Source.
func (s *FeeSource) LookupFee(ctx context.Context, code string) (*model.FeePercentiles, error) {
	return readThrough(ctx, s.cache, "fee:"+code, func(ctx context.Context) (*model.FeePercentiles, error) {
		return s.next.LookupFee(ctx, code)
	})
}

// GeoSource caches a geo.Source.
type GeoSource struct {
	next  geo.Source
	cache *cache
}

// NewGeoSource wraps next with store.
func NewGeoSource(next geo.Source, store Store, ttl time.Duration, log zerolog.Logger, m *metrics.Metrics) *GeoSource {
	return &GeoSource{next: next, cache: newCache(metrics.KindGeo, store, ttl, log, m)}
}

// LookupGeoFactors implements geo.Source.
func (s *GeoSource) LookupGeoFactors(ctx context.Context, postalCode string) (*model.GeoFactors, error) {
	return readThrough(ctx, s.cache, "geo:"+postalCode, func(ctx context.Context) (*model.GeoFactors, error) {
		return s.next.LookupGeoFactors(ctx, postalCode)
	})
}
