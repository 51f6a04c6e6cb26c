package testutil

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/rbac-service/internal/domain"
)

// MemoryUserRepository is an in-memory repository.UserRepository for tests.
type MemoryUserRepository struct {
	mu    sync.Mutex
	seq   int
	Users map[string]*domain.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{Users: make(map[string]*domain.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if user.ID == "" {
		user.ID = "user-" + strconv.Itoa(r.seq)
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.Users[user.ID] = &copied
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.Users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.Users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryUserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]domain.User, 0, len(r.Users))
	for _, user := range r.Users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

// SetRole mutates a stored user's role, simulating an admin role change.
func (r *MemoryUserRepository) SetRole(id string, role domain.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.Users[id]; ok {
		user.Role = role
	}
}

// MemoryPostRepository is an in-memory repository.PostRepository for tests.
type MemoryPostRepository struct {
	mu    sync.Mutex
	seq   int
	Posts map[string]*domain.Post

	// Usernames resolves author ids for ListWithAuthors.
	Usernames map[string]string
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{
		Posts:     make(map[string]*domain.Post),
		Usernames: make(map[string]string),
	}
}

func (r *MemoryPostRepository) Create(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if post.ID == "" {
		post.ID = "post-" + strconv.Itoa(r.seq)
	}
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	copied := *post
	r.Posts[post.ID] = &copied
	return nil
}

func (r *MemoryPostRepository) Update(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.Posts[post.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Title = post.Title
	stored.Content = post.Content
	stored.UpdatedAt = time.Now()
	post.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryPostRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Posts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.Posts, id)
	return nil
}

func (r *MemoryPostRepository) GetByID(_ context.Context, id string) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.Posts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *post
	return &copied, nil
}

func (r *MemoryPostRepository) ListWithAuthors(_ context.Context) ([]domain.PostWithAuthor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	posts := make([]domain.PostWithAuthor, 0, len(r.Posts))
	for _, post := range r.Posts {
		posts = append(posts, domain.PostWithAuthor{
			Post:           *post,
			AuthorUsername: r.Usernames[post.AuthorID],
		})
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

// MemoryAuditRepository is an in-memory repository.AuditRepository for tests.
type MemoryAuditRepository struct {
	mu      sync.Mutex
	seq     int
	Entries []domain.AuditEntry
}

func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{}
}

func (r *MemoryAuditRepository) Create(_ context.Context, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	entry.ID = "audit-" + strconv.Itoa(r.seq)
	entry.CreatedAt = time.Now()
	r.Entries = append(r.Entries, *entry)
	return nil
}

func (r *MemoryAuditRepository) ListRecent(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > len(r.Entries) {
		limit = len(r.Entries)
	}
	out := make([]domain.AuditEntry, limit)
	for i := 0; i < limit; i++ {
		out[i] = r.Entries[len(r.Entries)-1-i]
	}
	return out, nil
}
