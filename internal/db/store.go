package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gyeh/carecost/internal/model"
	embedsql "github.com/gyeh/carecost/internal/sql"
)

// FeeStore reads procedure fee percentiles from ref.procedure_fees.
type FeeStore struct {
	pool *pgxpool.Pool
}

// NewFeeStore wraps pool.
func NewFeeStore(pool *pgxpool.Pool) *FeeStore {
	return &FeeStore{pool: pool}
}

// LookupFee returns the stored percentiles for a normalized code, or nil
// when the code is not loaded.
func (s *FeeStore) LookupFee(ctx context.Context, code string) (*model.FeePercentiles, error) {
	var (
		p           model.FeePercentiles
		aLow, aHigh *string
		bLow, bHigh *string
	)
	err := s.pool.QueryRow(ctx, embedsql.LookupProcedureFee, code).
		Scan(&p.Code, &p.Description, &aLow, &aHigh, &bLow, &bHigh)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query procedure fee %s: %w", code, err)
	}

	if p.ScheduleA, err = schedule(aLow, aHigh); err != nil {
		return nil, fmt.Errorf("procedure fee %s schedule a: %w", code, err)
	}
	if p.ScheduleB, err = schedule(bLow, bHigh); err != nil {
		return nil, fmt.Errorf("procedure fee %s schedule b: %w", code, err)
	}
	p.Origin = model.FeeOriginSourced
	return &p, nil
}

// schedule builds a FeeSchedule from nullable numeric text. A schedule with
// only one percentile uses it for both bounds; with neither it is nil.
func schedule(low, high *string) (*model.FeeSchedule, error) {
	if low == nil && high == nil {
		return nil, nil
	}
	if low == nil {
		low = high
	}
	if high == nil {
		high = low
	}
	l, err := decimal.NewFromString(*low)
	if err != nil {
		return nil, fmt.Errorf("parse p50 %q: %w", *low, err)
	}
	h, err := decimal.NewFromString(*high)
	if err != nil {
		return nil, fmt.Errorf("parse p75 %q: %w", *high, err)
	}
	return &model.FeeSchedule{Low: l, High: h}, nil
}

// GeoStore reads regional factors from ref.geo_factors.
type GeoStore struct {
	pool *pgxpool.Pool
}

// NewGeoStore wraps pool.
func NewGeoStore(pool *pgxpool.Pool) *GeoStore {
	return &GeoStore{pool: pool}
}

// LookupGeoFactors returns the factors for a five-digit postal code, or nil
// when none are loaded.
func (s *GeoStore) LookupGeoFactors(ctx context.Context, postalCode string) (*model.GeoFactors, error) {
	var (
		f    model.GeoFactors
		a, b string
	)
	err := s.pool.QueryRow(ctx, embedsql.LookupGeoFactors, postalCode).Scan(&f.PostalCode, &a, &b)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query geo factors %s: %w", postalCode, err)
	}
	if f.ScheduleAFactor, err = decimal.NewFromString(a); err != nil {
		return nil, fmt.Errorf("parse schedule a factor %q: %w", a, err)
	}
	if f.ScheduleBFactor, err = decimal.NewFromString(b); err != nil {
		return nil, fmt.Errorf("parse schedule b factor %q: %w", b, err)
	}
	return &f, nil
}
