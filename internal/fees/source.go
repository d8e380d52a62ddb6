// Package fees resolves procedure codes to fee percentiles, filling gaps from
// a versioned fallback table.
package fees

import (
	"context"
	"sync"

	"github.com/gyeh/carecost/internal/model"
	"github.com/gyeh/carecost/internal/normalize"
)

// Source looks up fee percentiles by normalized procedure code.
// A nil result with a nil error means the code is unknown.
type Source interface {
	LookupFee(ctx context.Context, code string) (*model.FeePercentiles, error)
}

// MemorySource is a map-backed Source. The zero value is empty and usable.
type MemorySource struct {
	mu   sync.RWMutex
	rows map[string]model.FeePercentiles
}

// NewMemorySource returns a MemorySource holding rows.
func NewMemorySource(rows ...model.FeePercentiles) *MemorySource {
	s := &MemorySource{}
	for _, r := range rows {
		s.Put(r)
	}
	return s
}

// Put adds or replaces the row for r.Code.
func (s *MemorySource) Put(r model.FeePercentiles) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows == nil {
		s.rows = make(map[string]model.FeePercentiles)
	}
	r.Code = normalize.ProcedureCode(r.Code)
	s.rows[r.Code] = r
}

// LookupFee implements Source.
func (s *MemorySource) LookupFee(_ context.Context, code string) (*model.FeePercentiles, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rows[code]
	if !ok {
		return nil, nil
	}
	return clonePercentiles(&r), nil
}
