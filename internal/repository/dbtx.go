package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx, letting every
// repository struct run unchanged whether it's handed the pool directly or
// an in-flight transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const serializationFailure = "40001"
const deadlockDetected = "40P01"

// opTimeout bounds a single transaction attempt, per the spec's allowance
// for a wall-clock upper bound on any one operation.
const opTimeout = 5 * time.Second

// WithinTx runs fn inside a single serializable transaction, retrying the
// whole closure on a serialization failure or deadlock. fn must not retain
// the *Repositories it's given beyond the call.
func WithinTx(ctx context.Context, pool *pgxpool.Pool, repos *Repositories, fn func(ctx context.Context, tx *Repositories) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 2 * time.Second
	policy.InitialInterval = 5 * time.Millisecond

	return backoff.Retry(func() error {
		opCtx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()

		tx, err := pool.BeginTx(opCtx, pgx.TxOptions{IsoLevel: pgx.Serializable})
		if err != nil {
			return backoff.Permanent(err)
		}
		defer tx.Rollback(opCtx)

		txRepos := repos.withTx(tx)
		if err := fn(opCtx, txRepos); err != nil {
			if isRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		if err := tx.Commit(opCtx); err != nil {
			if isRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}, policy)
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == serializationFailure || pgErr.Code == deadlockDetected
	}
	return false
}
