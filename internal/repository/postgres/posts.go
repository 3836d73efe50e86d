package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/social-platform-content/internal/core/domain"
	"github.com/arklim/social-platform-content/internal/core/port"
	"github.com/arklim/social-platform-content/internal/repository"
)

var postColumns = []string{
	"id",
	"user_id",
	"content",
	"is_public",
	"created_at",
	"updated_at",
}

// PostRepository implements port.PostRepository using PostgreSQL.
type PostRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPostRepository wires a PostgreSQL-backed post repository.
func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *PostRepository) WithTx(tx pgx.Tx) *PostRepository {
	if tx == nil {
		return r
	}
	return &PostRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new post row.
func (r *PostRepository) Create(ctx context.Context, post domain.Post) error {
	stmt, args, err := r.builder.Insert("content.posts").
		Columns(postColumns...).
		Values(
			post.ID,
			post.UserID,
			post.Content,
			post.IsPublic,
			post.CreatedAt,
			post.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert post sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

// GetByID retrieves a post by identifier.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	stmt, args, err := r.builder.
		Select(postColumns...).
		From("content.posts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select post sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var post domain.Post
	if err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.Content,
		&post.IsPublic,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}

	return &post, nil
}

// ListPublic returns public posts ordered newest-first.
func (r *PostRepository) ListPublic(ctx context.Context, page port.PageRequest) ([]domain.Post, error) {
	query := r.builder.Select(postColumns...).
		From("content.posts").
		Where(squirrel.Eq{"is_public": true})

	return r.list(ctx, query, page)
}

// ListByOwner returns all posts owned by the given user, newest-first.
func (r *PostRepository) ListByOwner(ctx context.Context, ownerID string, page port.PageRequest) ([]domain.Post, error) {
	query := r.builder.Select(postColumns...).
		From("content.posts").
		Where(squirrel.Eq{"user_id": ownerID})

	return r.list(ctx, query, page)
}

// ListVisibleTo returns every public post plus the requester's own
// private posts, newest-first.
func (r *PostRepository) ListVisibleTo(ctx context.Context, requesterID string, page port.PageRequest) ([]domain.Post, error) {
	query := r.builder.Select(postColumns...).
		From("content.posts").
		Where(squirrel.Or{
			squirrel.Eq{"is_public": true},
			squirrel.Eq{"user_id": requesterID},
		})

	return r.list(ctx, query, page)
}

func (r *PostRepository) list(ctx context.Context, query squirrel.SelectBuilder, page port.PageRequest) ([]domain.Post, error) {
	query = query.OrderBy("created_at DESC", "id DESC")

	if page.Limit > 0 {
		query = query.Limit(uint64(page.Limit))
	}
	if page.Offset > 0 {
		query = query.Offset(uint64(page.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list posts sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := make([]domain.Post, 0)
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(
			&post.ID,
			&post.UserID,
			&post.Content,
			&post.IsPublic,
			&post.CreatedAt,
			&post.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}

// Update rewrites a post's content, visibility, and update timestamp.
func (r *PostRepository) Update(ctx context.Context, post domain.Post) error {
	stmt, args, err := r.builder.Update("content.posts").
		Set("content", post.Content).
		Set("is_public", post.IsPublic).
		Set("updated_at", post.UpdatedAt).
		Where(squirrel.Eq{"id": post.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update post sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a post row.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("content.posts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete post sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// CountByOwner returns the number of posts owned by the given user.
func (r *PostRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("content.posts").
		Where(squirrel.Eq{"user_id": ownerID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count posts sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan posts count: %w", err)
	}

	return int(count), nil
}

var _ port.PostRepository = (*PostRepository)(nil)
