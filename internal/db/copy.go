package db

import (
	"github.com/jackc/pgx/v5"

	"github.com/gyeh/carecost/internal/model"
)

// ChannelSource implements pgx.CopyFromSource by reading staging rows from a
// channel. The channel gives backpressure between the Parquet reader and
// the COPY writer.
type ChannelSource[T model.CopyRow] struct {
	ch      <-chan T
	current T
	n       int64
}

// NewChannelSource creates a CopyFromSource backed by a channel.
func NewChannelSource[T model.CopyRow](ch <-chan T) *ChannelSource[T] {
	return &ChannelSource[T]{ch: ch}
}

// Next advances to the next row. Returns false when the channel is closed.
func (s *ChannelSource[T]) Next() bool {
	row, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = row
	s.n++
	return true
}

// Values returns the current row's values in COPY column order.
func (s *ChannelSource[T]) Values() ([]any, error) {
	return s.current.CopyValues(), nil
}

// Err always returns nil; producer errors travel on their own channel.
func (s *ChannelSource[T]) Err() error {
	return nil
}

// Rows returns how many rows have been handed to COPY so far.
func (s *ChannelSource[T]) Rows() int64 {
	return s.n
}

var (
	_ pgx.CopyFromSource = (*ChannelSource[*model.StagingFeeRow])(nil)
	_ pgx.CopyFromSource = (*ChannelSource[*model.StagingGeoRow])(nil)
)
