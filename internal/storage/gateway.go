package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/aeronavigator/config"
	"github.com/Domenick1991/aeronavigator/internal/domain"
	"github.com/Domenick1991/aeronavigator/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxpoolNewWithConfig is swapped in tests.
var pgxpoolNewWithConfig = pgxpool.NewWithConfig

// Gateway runs every statement on its own acquired connection and releases it
// before returning, whatever the outcome. Nothing spans two calls except InTx.
type Gateway struct {
	pool *pgxpool.Pool
	log  logger.Logger
}

func New(ctx context.Context, cfg config.DatabaseConfig, log logger.Logger) (*Gateway, error) {
	return Open(ctx, cfg.DSN(), cfg.MaxConns, log.With("host", cfg.Host, "database", cfg.Name))
}

// Open builds the pool from a DSN and verifies it with a ping.
func Open(ctx context.Context, dsn string, maxConns int32, log logger.Logger) (*Gateway, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}

	pool, err := pgxpoolNewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("open database pool", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrConnectionFailure, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		log.Error("ping database", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrConnectionFailure, err)
	}
	return &Gateway{pool: pool, log: log}, nil
}

func (g *Gateway) withConn(ctx context.Context, fn func(conn *pgxpool.Conn) error) error {
	conn, err := g.pool.Acquire(ctx)
	if err != nil {
		g.log.Error("acquire connection", "error", err)
		return fmt.Errorf("%w: %v", domain.ErrConnectionFailure, err)
	}
	defer conn.Release()
	return fn(conn)
}

// Execute runs a write statement and reports the affected row count.
func (g *Gateway) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	var affected int64
	err := g.withConn(ctx, func(conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	return affected, err
}

// InTx runs fn inside a single transaction on a single connection. The
// transaction commits when fn returns nil and rolls back otherwise.
func (g *Gateway) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return g.withConn(ctx, func(conn *pgxpool.Conn) error {
		return pgx.BeginFunc(ctx, conn, fn)
	})
}

func (g *Gateway) Ping(ctx context.Context) error {
	return g.withConn(ctx, func(conn *pgxpool.Conn) error {
		return conn.Ping(ctx)
	})
}

func (g *Gateway) Close() {
	if g != nil && g.pool != nil {
		g.pool.Close()
	}
}

// QueryAll collects every row into T, matching columns to `db` tags.
func QueryAll[T any](ctx context.Context, g *Gateway, sql string, args ...any) ([]T, error) {
	var out []T
	err := g.withConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// QueryOne returns the first row as T, or nil when the query yields nothing.
func QueryOne[T any](ctx context.Context, g *Gateway, sql string, args ...any) (*T, error) {
	var out *T
	err := g.withConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		row, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CollectOne is QueryOne for statements issued inside InTx.
func CollectOne[T any](ctx context.Context, tx pgx.Tx, sql string, args ...any) (*T, error) {
	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return row, err
}
