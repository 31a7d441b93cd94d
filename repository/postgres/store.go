package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/repository"
	"github.com/joy095/settlement/utils"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
	q    querier
}

var _ repository.Store = (*Store)(nil)

// NewStore creates a Store backed by the connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool}
}

func (s *Store) RunInTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.pool == nil {
		// Already inside a transaction.
		return fn(s)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&Store{q: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.ErrRecordNotFound
	}
	return err
}

func roleConfig(role wallet_models.RecipientRole) (wallet_models.RoleConfig, error) {
	cfg, err := wallet_models.ConfigFor(role)
	if err != nil {
		return cfg, fmt.Errorf("postgres: %w", err)
	}
	return cfg, nil
}
