package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/social-platform-content/internal/core/domain"
	"github.com/arklim/social-platform-content/internal/core/port"
)

// PasswordHistoryRepository implements port.PasswordHistoryRepository
// using PostgreSQL.
type PasswordHistoryRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPasswordHistoryRepository wires a PostgreSQL-backed history repository.
func NewPasswordHistoryRepository(pool *pgxpool.Pool) *PasswordHistoryRepository {
	return &PasswordHistoryRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *PasswordHistoryRepository) WithTx(tx pgx.Tx) *PasswordHistoryRepository {
	if tx == nil {
		return r
	}
	return &PasswordHistoryRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Append inserts a password hash into the history table.
func (r *PasswordHistoryRepository) Append(ctx context.Context, entry domain.PasswordHistoryEntry) error {
	if strings.TrimSpace(entry.UserID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(entry.PasswordHash) == "" {
		return fmt.Errorf("password hash is required")
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	stmt, args, err := r.builder.Insert("content.password_history").
		Columns("id", "user_id", "password_hash", "created_at").
		Values(entry.ID, entry.UserID, entry.PasswordHash, createdAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert password history sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert password history: %w", err)
	}

	return nil
}

// RecentByUser retrieves the newest history entries for a user, up to limit.
func (r *PasswordHistoryRepository) RecentByUser(ctx context.Context, userID string, limit int) ([]domain.PasswordHistoryEntry, error) {
	query := r.builder.Select("id", "user_id", "password_hash", "created_at").
		From("content.password_history").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	return r.query(ctx, query)
}

// AllByUser retrieves every history entry for a user, newest-first.
func (r *PasswordHistoryRepository) AllByUser(ctx context.Context, userID string) ([]domain.PasswordHistoryEntry, error) {
	query := r.builder.Select("id", "user_id", "password_hash", "created_at").
		From("content.password_history").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC")

	return r.query(ctx, query)
}

func (r *PasswordHistoryRepository) query(ctx context.Context, query squirrel.SelectBuilder) ([]domain.PasswordHistoryEntry, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select password history sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query password history: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.PasswordHistoryEntry, 0)
	for rows.Next() {
		var entry domain.PasswordHistoryEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.PasswordHash, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan password history: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate password history: %w", err)
	}

	return entries, nil
}

// DeleteMany removes the supplied history entries by identifier.
func (r *PasswordHistoryRepository) DeleteMany(ctx context.Context, entries []domain.PasswordHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ID)
	}

	stmt, args, err := r.builder.Delete("content.password_history").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete password history sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete password history: %w", err)
	}

	return nil
}

var _ port.PasswordHistoryRepository = (*PasswordHistoryRepository)(nil)
