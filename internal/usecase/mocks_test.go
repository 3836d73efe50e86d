package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/arklim/social-platform-content/internal/core/domain"
	"github.com/arklim/social-platform-content/internal/core/port"
	"github.com/arklim/social-platform-content/internal/repository"
)

// fakeHasher is a deterministic stand-in for the Argon2 hasher so tests
// stay fast and hash comparisons stay predictable.
type fakeHasher struct {
	hashErr   error
	verifyErr error
}

func (f *fakeHasher) Hash(password string) (string, error) {
	if f.hashErr != nil {
		return "", f.hashErr
	}
	return "h:" + password, nil
}

func (f *fakeHasher) Verify(password, encoded string) (bool, error) {
	if f.verifyErr != nil {
		return false, f.verifyErr
	}
	return encoded == "h:"+password, nil
}

type memUserRepository struct {
	users map[string]*domain.User

	createErr        error
	existsErr        error
	getErr           error
	updatePassErr    error
	getForUpdateIDs  []string
	updatedPasswords map[string]string
}

func newMemUserRepository(users ...domain.User) *memUserRepository {
	repo := &memUserRepository{
		users:            make(map[string]*domain.User),
		updatedPasswords: make(map[string]string),
	}
	for i := range users {
		u := users[i]
		repo.users[u.ID] = &u
	}
	return repo
}

func (m *memUserRepository) Create(_ context.Context, user domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.users {
		if existing.Username == user.Username {
			return repository.ErrDuplicateUsername
		}
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u := user
	m.users[u.ID] = &u
	return nil
}

func (m *memUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUserRepository) GetByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, user := range m.users {
		if user.Username == identifier || user.Email == identifier {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUserRepository) GetForUpdate(ctx context.Context, id string) (*domain.User, error) {
	m.getForUpdateIDs = append(m.getForUpdateIDs, id)
	return m.GetByID(ctx, id)
}

func (m *memUserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, user := range m.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, user := range m.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserRepository) UpdatePassword(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	if m.updatePassErr != nil {
		return m.updatePassErr
	}
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = changedAt
	m.updatedPasswords[id] = passwordHash
	return nil
}

func (m *memUserRepository) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	stamp := at
	user.LastLogin = &stamp
	return nil
}

type memHistoryRepository struct {
	entries []domain.PasswordHistoryEntry

	appendErr error
	listErr   error
	deleteErr error
}

func (m *memHistoryRepository) Append(_ context.Context, entry domain.PasswordHistoryEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memHistoryRepository) newestFirst(userID string) []domain.PasswordHistoryEntry {
	out := make([]domain.PasswordHistoryEntry, 0, len(m.entries))
	for _, entry := range m.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *memHistoryRepository) RecentByUser(_ context.Context, userID string, limit int) ([]domain.PasswordHistoryEntry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := m.newestFirst(userID)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memHistoryRepository) AllByUser(_ context.Context, userID string) ([]domain.PasswordHistoryEntry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.newestFirst(userID), nil
}

func (m *memHistoryRepository) DeleteMany(_ context.Context, entries []domain.PasswordHistoryEntry) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	doomed := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		doomed[entry.ID] = struct{}{}
	}
	kept := m.entries[:0]
	for _, entry := range m.entries {
		if _, ok := doomed[entry.ID]; !ok {
			kept = append(kept, entry)
		}
	}
	m.entries = kept
	return nil
}

// fakeUnitOfWork runs the callback directly against the backing
// repositories. Commit/rollback semantics are exercised at the
// repository layer, not here.
type fakeUnitOfWork struct {
	users    *memUserRepository
	history  *memHistoryRepository
	beginErr error
	calls    int
}

func (f *fakeUnitOfWork) Execute(_ context.Context, fn func(repos port.TxRepositories) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	f.calls++
	return fn(port.TxRepositories{Users: f.users, History: f.history})
}

type memPostRepository struct {
	posts map[string]*domain.Post

	createErr error
	getErr    error
	listErr   error
	updateErr error
	deleteErr error
}

func newMemPostRepository(posts ...domain.Post) *memPostRepository {
	repo := &memPostRepository{posts: make(map[string]*domain.Post)}
	for i := range posts {
		p := posts[i]
		repo.posts[p.ID] = &p
	}
	return repo
}

func (m *memPostRepository) Create(_ context.Context, post domain.Post) error {
	if m.createErr != nil {
		return m.createErr
	}
	p := post
	m.posts[p.ID] = &p
	return nil
}

func (m *memPostRepository) GetByID(_ context.Context, id string) (*domain.Post, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	post, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *post
	return &copied, nil
}

func (m *memPostRepository) sorted(filter func(domain.Post) bool, page port.PageRequest) []domain.Post {
	out := make([]domain.Post, 0, len(m.posts))
	for _, post := range m.posts {
		if filter(*post) {
			out = append(out, *post)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if page.Offset > 0 {
		if page.Offset >= len(out) {
			return nil
		}
		out = out[page.Offset:]
	}
	if page.Limit > 0 && len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out
}

func (m *memPostRepository) ListPublic(_ context.Context, page port.PageRequest) ([]domain.Post, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sorted(func(p domain.Post) bool { return p.IsPublic }, page), nil
}

func (m *memPostRepository) ListByOwner(_ context.Context, ownerID string, page port.PageRequest) ([]domain.Post, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sorted(func(p domain.Post) bool { return p.UserID == ownerID }, page), nil
}

func (m *memPostRepository) ListVisibleTo(_ context.Context, requesterID string, page port.PageRequest) ([]domain.Post, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sorted(func(p domain.Post) bool { return p.IsPublic || p.UserID == requesterID }, page), nil
}

func (m *memPostRepository) Update(_ context.Context, post domain.Post) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.posts[post.ID]; !ok {
		return repository.ErrNotFound
	}
	p := post
	m.posts[p.ID] = &p
	return nil
}

func (m *memPostRepository) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *memPostRepository) CountByOwner(_ context.Context, ownerID string) (int, error) {
	if m.listErr != nil {
		return 0, m.listErr
	}
	count := 0
	for _, post := range m.posts {
		if post.UserID == ownerID {
			count++
		}
	}
	return count, nil
}

type recordingPublisher struct {
	registered      []domain.UserRegisteredEvent
	passwordChanged []domain.PasswordChangedEvent
	postCreated     []domain.PostEvent
	postUpdated     []domain.PostEvent
	postDeleted     []domain.PostEvent
	err             error
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.registered = append(p.registered, event)
	return p.err
}

func (p *recordingPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	p.passwordChanged = append(p.passwordChanged, event)
	return p.err
}

func (p *recordingPublisher) PublishPostCreated(_ context.Context, event domain.PostEvent) error {
	p.postCreated = append(p.postCreated, event)
	return p.err
}

func (p *recordingPublisher) PublishPostUpdated(_ context.Context, event domain.PostEvent) error {
	p.postUpdated = append(p.postUpdated, event)
	return p.err
}

func (p *recordingPublisher) PublishPostDeleted(_ context.Context, event domain.PostEvent) error {
	p.postDeleted = append(p.postDeleted, event)
	return p.err
}

// stubTokenService issues predictable tokens of the form "token:<subject>".
type stubTokenService struct {
	issueErr  error
	verifyErr error
	expiresAt time.Time
}

func (s *stubTokenService) Issue(subject string) (string, time.Time, error) {
	if s.issueErr != nil {
		return "", time.Time{}, s.issueErr
	}
	expires := s.expiresAt
	if expires.IsZero() {
		expires = time.Now().Add(12 * time.Hour)
	}
	return "token:" + subject, expires, nil
}

func (s *stubTokenService) Verify(token string) (string, error) {
	if s.verifyErr != nil {
		return "", s.verifyErr
	}
	const prefix = "token:"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return "", errors.New("verify: malformed token")
	}
	return token[len(prefix):], nil
}

var errBoom = fmt.Errorf("storage exploded")
