package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-content/internal/core/domain"
	"github.com/arklim/social-platform-content/internal/core/port"
	"github.com/arklim/social-platform-content/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var (
	// ErrPostNotFound indicates the requested post does not exist.
	ErrPostNotFound = errors.New("post not found")
	// ErrAccessDenied indicates the caller may not perform the operation on the post.
	ErrAccessDenied = errors.New("access denied")
	// ErrInvalidPostContent indicates the post content is empty or too long.
	ErrInvalidPostContent = errors.New("post content is empty or exceeds the allowed length")
)

// PostUpdate captures a partial post update. Nil fields leave the
// corresponding attribute unchanged.
type PostUpdate struct {
	Content  *string
	IsPublic *bool
}

// PostService coordinates post lifecycle and visibility rules.
type PostService struct {
	posts  port.PostRepository
	events port.EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewPostService constructs a PostService instance.
func NewPostService(posts port.PostRepository, events port.EventPublisher, log *zap.Logger) *PostService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostService{
		posts:  posts,
		events: events,
		logger: log,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (s *PostService) WithClock(now func() time.Time) *PostService {
	s.now = now
	return s
}

// CreatePost stores a new post owned by userID.
func (s *PostService) CreatePost(ctx context.Context, userID, content string, isPublic bool) (domain.Post, error) {
	if userID == "" {
		return domain.Post{}, ErrAccessDenied
	}
	if !domain.ValidPostContent(content) {
		return domain.Post{}, ErrInvalidPostContent
	}

	now := s.now().UTC()
	post := domain.Post{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		IsPublic:  isPublic,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return domain.Post{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if s.events != nil {
		s.publishPostEvent(ctx, post, s.events.PublishPostCreated, "post created")
	}

	return post, nil
}

// GetPost returns a single post if the requester may see it. An empty
// requesterID denotes an anonymous caller.
func (s *PostService) GetPost(ctx context.Context, requesterID, postID string) (domain.Post, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return domain.Post{}, err
	}

	if !post.VisibleTo(requesterID) {
		return domain.Post{}, ErrAccessDenied
	}

	return post, nil
}

// UpdatePost applies a partial update to a post owned by the requester.
func (s *PostService) UpdatePost(ctx context.Context, requesterID, postID string, update PostUpdate) (domain.Post, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return domain.Post{}, err
	}

	if !post.MutableBy(requesterID) {
		return domain.Post{}, ErrAccessDenied
	}

	if update.Content != nil {
		if !domain.ValidPostContent(*update.Content) {
			return domain.Post{}, ErrInvalidPostContent
		}
		post.Content = *update.Content
	}
	if update.IsPublic != nil {
		post.IsPublic = *update.IsPublic
	}
	post.UpdatedAt = s.now().UTC()

	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Post{}, ErrPostNotFound
		}
		return domain.Post{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if s.events != nil {
		s.publishPostEvent(ctx, post, s.events.PublishPostUpdated, "post updated")
	}

	return post, nil
}

// DeletePost removes a post owned by the requester.
func (s *PostService) DeletePost(ctx context.Context, requesterID, postID string) error {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return err
	}

	if !post.MutableBy(requesterID) {
		return ErrAccessDenied
	}

	if err := s.posts.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if s.events != nil {
		s.publishPostEvent(ctx, post, s.events.PublishPostDeleted, "post deleted")
	}

	return nil
}

// ListPublic returns the public feed, newest-first.
func (s *PostService) ListPublic(ctx context.Context, page port.PageRequest) ([]domain.Post, error) {
	posts, err := s.posts.ListPublic(ctx, normalizePage(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return posts, nil
}

// ListFeed returns every post the requester may see: public posts plus
// their own private ones. Anonymous callers get the public feed.
func (s *PostService) ListFeed(ctx context.Context, requesterID string, page port.PageRequest) ([]domain.Post, error) {
	page = normalizePage(page)

	if requesterID == "" {
		return s.ListPublic(ctx, page)
	}

	posts, err := s.posts.ListVisibleTo(ctx, requesterID, page)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return posts, nil
}

// ListMine returns all posts owned by the requester, private included.
func (s *PostService) ListMine(ctx context.Context, requesterID string, page port.PageRequest) ([]domain.Post, error) {
	if requesterID == "" {
		return nil, ErrAccessDenied
	}

	posts, err := s.posts.ListByOwner(ctx, requesterID, normalizePage(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return posts, nil
}

// CountMine returns the number of posts owned by the requester.
func (s *PostService) CountMine(ctx context.Context, requesterID string) (int, error) {
	if requesterID == "" {
		return 0, ErrAccessDenied
	}

	count, err := s.posts.CountByOwner(ctx, requesterID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return count, nil
}

func normalizePage(page port.PageRequest) port.PageRequest {
	if page.Limit <= 0 {
		page.Limit = defaultPageSize
	}
	if page.Limit > maxPageSize {
		page.Limit = maxPageSize
	}
	if page.Offset < 0 {
		page.Offset = 0
	}
	return page
}

func (s *PostService) getPost(ctx context.Context, postID string) (domain.Post, error) {
	if postID == "" {
		return domain.Post{}, ErrPostNotFound
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Post{}, ErrPostNotFound
		}
		return domain.Post{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return *post, nil
}

func (s *PostService) publishPostEvent(ctx context.Context, post domain.Post, publish func(context.Context, domain.PostEvent) error, action string) {
	event := domain.PostEvent{
		EventID:    uuid.NewString(),
		PostID:     post.ID,
		UserID:     post.UserID,
		IsPublic:   post.IsPublic,
		OccurredAt: s.now().UTC(),
	}
	if err := publish(ctx, event); err != nil {
		s.logger.Warn(action,
			zap.String("post_id", post.ID),
			zap.Error(err))
	}
}
