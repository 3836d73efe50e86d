package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/social-platform-content/internal/core/port"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users           *UserRepository
	Posts           *PostRepository
	PasswordHistory *PasswordHistoryRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:           NewUserRepository(pool),
		Posts:           NewPostRepository(pool),
		PasswordHistory: NewPasswordHistoryRepository(pool),
	}
}

// UnitOfWork runs repository operations inside a single pgx transaction.
type UnitOfWork struct {
	pool  *pgxpool.Pool
	repos *Repositories
}

// NewUnitOfWork constructs a transaction runner over the provided pool.
func NewUnitOfWork(pool *pgxpool.Pool, repos *Repositories) *UnitOfWork {
	return &UnitOfWork{pool: pool, repos: repos}
}

// Execute begins a transaction, invokes fn with transaction-bound
// repositories, and commits. Any error from fn rolls the transaction
// back and is returned unchanged so sentinel checks keep working.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(repos port.TxRepositories) error) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txRepos := port.TxRepositories{
		Users:   u.repos.Users.WithTx(tx),
		History: u.repos.PasswordHistory.WithTx(tx),
	}

	if err := fn(txRepos); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

var _ port.UnitOfWork = (*UnitOfWork)(nil)
