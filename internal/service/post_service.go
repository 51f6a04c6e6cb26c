package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/rbac-service/internal/auth"
	"github.com/spec-kit/rbac-service/internal/domain"
	"github.com/spec-kit/rbac-service/internal/events"
	"github.com/spec-kit/rbac-service/internal/repository"
	apperrors "github.com/spec-kit/rbac-service/pkg/util"
)

// PostService coordinates post CRUD and the ownership rule.
type PostService struct {
	posts      repository.PostRepository
	dispatcher events.Dispatcher
}

// NewPostService constructs the service.
func NewPostService(posts repository.PostRepository, dispatcher events.Dispatcher) *PostService {
	return &PostService{posts: posts, dispatcher: dispatcher}
}

// PostInput describes create/update payloads.
type PostInput struct {
	Title   string
	Content string
}

// Create stores a new post authored by the caller.
func (s *PostService) Create(ctx context.Context, identity *auth.Identity, input PostInput) (*domain.Post, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, apperrors.NewValidationError("title and content required", nil)
	}

	post := &domain.Post{
		Title:    title,
		Content:  content,
		AuthorID: identity.SubjectID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventPostCreated, post.ID, identity.SubjectID, map[string]any{"title": post.Title})
	return post, nil
}

// List returns all posts, newest first, with author usernames.
func (s *PostService) List(ctx context.Context) ([]domain.PostWithAuthor, error) {
	return s.posts.ListWithAuthors(ctx)
}

// Update mutates a post after the ownership check. Existence is checked
// before ownership so a nonexistent id yields 404, never 403.
func (s *PostService) Update(ctx context.Context, identity *auth.Identity, id string, input PostInput) (*domain.Post, error) {
	post, err := s.loadForMutation(ctx, identity, id, "update")
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		post.Title = title
	}
	if content := strings.TrimSpace(input.Content); content != "" {
		post.Content = content
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventPostUpdated, post.ID, identity.SubjectID, map[string]any{"title": post.Title})
	return post, nil
}

// Delete removes a post after the ownership check.
func (s *PostService) Delete(ctx context.Context, identity *auth.Identity, id string) error {
	post, err := s.loadForMutation(ctx, identity, id, "delete")
	if err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("post", map[string]any{"id": id})
		}
		return err
	}

	s.publish(ctx, events.EventPostDeleted, post.ID, identity.SubjectID, nil)
	return nil
}

// loadForMutation fetches the post and applies the ownership policy: editors
// may only act on posts they authored, admins bypass the check, viewers never
// reach it because the permission table denies them earlier.
func (s *PostService) loadForMutation(ctx context.Context, identity *auth.Identity, id, action string) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post", map[string]any{"id": id})
		}
		return nil, err
	}

	if identity.Role == domain.RoleEditor && post.AuthorID != identity.SubjectID {
		return nil, apperrors.NewForbidden(
			"editors can only "+action+" their own posts",
			map[string]any{"role": identity.Role},
		)
	}
	return post, nil
}

func (s *PostService) publish(ctx context.Context, eventType events.EventType, postID, actorID string, meta map[string]any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		Resource:    "Post",
		ResourceID:  postID,
		PerformedBy: actorID,
		Timestamp:   time.Now(),
		Meta:        meta,
	})
}
