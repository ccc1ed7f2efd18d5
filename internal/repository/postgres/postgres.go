// Package postgres implements the repository interfaces on PostgreSQL.
//
// It is selected when DATABASE_URL is set. Queries go through a pgx
// connection pool; the schema is managed by goose migrations embedded in
// the migrations package. Semantics match the sqlite package exactly: the
// vote uniqueness rule lives in a unique index and ownership is part of
// every UPDATE/DELETE key.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/sakif/pawpoll/internal/apperror"
	"github.com/sakif/pawpoll/migrations"
)

// querier is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn and
// pgx.Tx. Repositories accept it so integration tests can run each test in
// a transaction that is rolled back afterwards.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB owns the connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to dsn, verifies the connection and applies pending
// migrations before returning.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &DB{pool: pool}, nil
}

// Migrate applies every pending goose migration. goose works on
// database/sql, so the pool is exposed through pgx's stdlib adapter for the
// duration of the run.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		return fmt.Errorf("postgres: creating migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("postgres: running migrations: %w", err)
	}
	return nil
}

// Close releases every pooled connection. pgxpool.Close has no error to
// report; the signature matches repository.Backend.
func (db *DB) Close() error {
	db.pool.Close()
	return nil
}

func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

func (db *DB) Votes() *VoteRepo {
	return NewVoteRepo(db.pool)
}

func (db *DB) Comments() *CommentRepo {
	return NewCommentRepo(db.pool)
}

func (db *DB) Profiles() *ProfileRepo {
	return NewProfileRepo(db.pool)
}

// requireRow turns a zero-row UPDATE/DELETE into a NotFound.
func requireRow(tag pgconn.CommandTag, resource, id string) error {
	if tag.RowsAffected() == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
