package refcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/carecost/internal/metrics"
	"github.com/gyeh/carecost/internal/model"
)

type countingFees struct {
	calls   atomic.Int32
	release chan struct{}
	row     *model.FeePercentiles
	err     error
}

func (c *countingFees) LookupFee(ctx context.Context, code string) (*model.FeePercentiles, error) {
	c.calls.Add(1)
	if c.release != nil {
		<-c.release
	}
	if c.err != nil {
		return nil, c.err
	}
	if c.row == nil || c.row.Code != code {
		return nil, nil
	}
	out := *c.row
	return &out, nil
}

type countingGeo struct {
	calls atomic.Int32
}

func (c *countingGeo) LookupGeoFactors(_ context.Context, zip string) (*model.GeoFactors, error) {
	c.calls.Add(1)
	return &model.GeoFactors{PostalCode: zip, ScheduleAFactor: decimal.RequireFromString("1.1"), ScheduleBFactor: decimal.RequireFromString("0.95")}, nil
}

func feeRow() *model.FeePercentiles {
	return &model.FeePercentiles{
		Code:      "99214",
		ScheduleA: &model.FeeSchedule{Low: decimal.NewFromInt(125), High: decimal.NewFromInt(175)},
		Origin:    model.FeeOriginSourced,
	}
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "carecost:"), mr
}

func TestFeeSourceCachesHitsAndMisses(t *testing.T) {
	ctx := context.Background()
	next := &countingFees{row: feeRow()}
	src := NewFeeSource(next, NewMemoryStore(), time.Minute, zerolog.Nop(), nil)

	for i := 0; i < 3; i++ {
		p, err := src.LookupFee(ctx, "99214")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "175", p.ScheduleA.High.String())
	}
	for i := 0; i < 3; i++ {
		p, err := src.LookupFee(ctx, "00000")
		require.NoError(t, err)
		assert.Nil(t, p)
	}
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestFeeSourceSingleflight(t *testing.T) {
	next := &countingFees{row: feeRow(), release: make(chan struct{})}
	src := NewFeeSource(next, NewMemoryStore(), time.Minute, zerolog.Nop(), nil)

	var wg sync.WaitGroup
	results := make([]*model.FeePercentiles, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := src.LookupFee(context.Background(), "99214")
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}
	// let the goroutines pile up behind the first load
	time.Sleep(50 * time.Millisecond)
	close(next.release)
	wg.Wait()

	assert.Equal(t, int32(1), next.calls.Load())
	for _, p := range results {
		require.NotNil(t, p)
		assert.Equal(t, "99214", p.Code)
	}
}

func TestFeeSourceErrorNotCached(t *testing.T) {
	next := &countingFees{err: errors.New("db down")}
	src := NewFeeSource(next, NewMemoryStore(), time.Minute, zerolog.Nop(), nil)

	_, err := src.LookupFee(context.Background(), "99214")
	assert.Error(t, err)
	_, err = src.LookupFee(context.Background(), "99214")
	assert.Error(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestGeoSourceWithRedis(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	next := &countingGeo{}
	m := metrics.New(nil)
	src := NewGeoSource(next, store, 10*time.Minute, zerolog.Nop(), m)

	f, err := src.LookupGeoFactors(ctx, "10001")
	require.NoError(t, err)
	assert.Equal(t, "1.1", f.ScheduleAFactor.String())

	f, err = src.LookupGeoFactors(ctx, "10001")
	require.NoError(t, err)
	assert.Equal(t, "0.95", f.ScheduleBFactor.String())
	assert.Equal(t, int32(1), next.calls.Load())

	assert.True(t, mr.Exists("carecost:geo:10001"))
	assert.Equal(t, 10*time.Minute, mr.TTL("carecost:geo:10001"))

	mr.FastForward(11 * time.Minute)
	_, err = src.LookupGeoFactors(ctx, "10001")
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestRedisUnavailableBypassesCache(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()
	next := &countingGeo{}
	src := NewGeoSource(next, store, 0, zerolog.Nop(), nil)

	f, err := src.LookupGeoFactors(context.Background(), "94110")
	require.NoError(t, err)
	assert.NotNil(t, f)
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, s.Set(ctx, "forever", []byte("v"), 0))

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	now = now.Add(time.Minute)
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "forever")
	assert.True(t, ok)
}
