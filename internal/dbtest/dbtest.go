// Package dbtest runs an embedded Postgres for integration tests.
package dbtest

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/carecost/internal/db"
)

const (
	testDB       = "carecosttest"
	testUser     = "postgres"
	testPassword = "postgres"
)

// Server is a running embedded Postgres.
type Server struct {
	DSN     string
	pg      *embeddedpostgres.EmbeddedPostgres
	runtime string
}

// Start launches Postgres 16 on port. Each test package must use its own
// port; packages run in parallel.
func Start(port uint32) (*Server, error) {
	runtime, err := os.MkdirTemp("", "carecost-pg-")
	if err != nil {
		return nil, fmt.Errorf("create runtime dir: %w", err)
	}
	pg := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(port).
			Database(testDB).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			RuntimePath(runtime).
			StartTimeout(30 * time.Second),
	)
	if err := pg.Start(); err != nil {
		os.RemoveAll(runtime)
		return nil, fmt.Errorf("start embedded postgres: %w", err)
	}
	return &Server{
		DSN: fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
			testUser, testPassword, port, testDB),
		pg:      pg,
		runtime: runtime,
	}, nil
}

// Stop shuts Postgres down and removes its runtime files.
func (s *Server) Stop() error {
	err := s.pg.Stop()
	os.RemoveAll(s.runtime)
	return err
}

// Main is a TestMain body: it starts Postgres, runs the tests and exits.
func Main(m *testing.M, port uint32, srv **Server) {
	s, err := Start(port)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	*srv = s

	code := m.Run()

	if err := s.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop embedded postgres: %v\n", err)
	}
	os.Exit(code)
}

// Pool drops the carecost schemas, reapplies migrations and returns a pool
// closed at test cleanup.
func (s *Server) Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pool, err := db.NewPool(ctx, s.DSN)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	for _, schema := range []string{"stage", "ref"} {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema)); err != nil {
			t.Fatalf("drop schema %s: %v", schema, err)
		}
	}
	if err := db.ApplyMigrations(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return pool
}
