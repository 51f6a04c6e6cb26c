package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/rbac-service/internal/auth"
	"github.com/spec-kit/rbac-service/internal/domain"
	"github.com/spec-kit/rbac-service/internal/events"
	"github.com/spec-kit/rbac-service/internal/testutil"
	apperrors "github.com/spec-kit/rbac-service/pkg/util"
)

func editorIdentity(id string) *auth.Identity {
	return &auth.Identity{SubjectID: id, Role: domain.RoleEditor}
}

func adminIdentity(id string) *auth.Identity {
	return &auth.Identity{SubjectID: id, Role: domain.RoleAdmin}
}

func seedPost(t *testing.T, repo *testutil.MemoryPostRepository, authorID string) *domain.Post {
	t.Helper()
	post := &domain.Post{Title: "title", Content: "content", AuthorID: authorID}
	require.NoError(t, repo.Create(context.Background(), post))
	return post
}

func TestCreatePostSetsAuthor(t *testing.T) {
	repo := testutil.NewMemoryPostRepository()
	svc := NewPostService(repo, nil)

	post, err := svc.Create(context.Background(), editorIdentity("editor-1"), PostInput{Title: "  Hello  ", Content: "World"})
	require.NoError(t, err)
	assert.Equal(t, "editor-1", post.AuthorID)
	assert.Equal(t, "Hello", post.Title)
}

func TestCreatePostValidatesInput(t *testing.T) {
	svc := NewPostService(testutil.NewMemoryPostRepository(), nil)

	_, err := svc.Create(context.Background(), editorIdentity("editor-1"), PostInput{Title: " ", Content: ""})
	de := apperrors.ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
}

func TestEditorUpdatesOwnPost(t *testing.T) {
	repo := testutil.NewMemoryPostRepository()
	post := seedPost(t, repo, "editor-1")
	svc := NewPostService(repo, nil)

	updated, err := svc.Update(context.Background(), editorIdentity("editor-1"), post.ID, PostInput{Title: "Changed"})
	require.NoError(t, err)
	assert.Equal(t, "Changed", updated.Title)
	assert.Equal(t, "content", updated.Content, "empty fields stay unchanged")
}

func TestEditorCannotUpdateOthersPost(t *testing.T) {
	repo := testutil.NewMemoryPostRepository()
	post := seedPost(t, repo, "editor-2")
	svc := NewPostService(repo, nil)

	_, err := svc.Update(context.Background(), editorIdentity("editor-1"), post.ID, PostInput{Title: "Hijack"})
	de := apperrors.ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, "FORBIDDEN", de.Code)
	assert.Contains(t, de.Message, "own posts")

	// No partial mutation happened.
	stored, err := repo.GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "title", stored.Title)
}

func TestAdminBypassesOwnership(t *testing.T) {
	repo := testutil.NewMemoryPostRepository()
	post := seedPost(t, repo, "editor-2")
	svc := NewPostService(repo, nil)

	_, err := svc.Update(context.Background(), adminIdentity("admin-1"), post.ID, PostInput{Title: "Moderated"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), adminIdentity("admin-1"), post.ID))
}

func TestMissingPostReportsNotFoundBeforeOwnership(t *testing.T) {
	repo := testutil.NewMemoryPostRepository()
	seedPost(t, repo, "editor-2")
	svc := NewPostService(repo, nil)

	// The caller would also fail the ownership check; existence is reported
	// first.
	_, err := svc.Update(context.Background(), editorIdentity("editor-1"), "no-such-post", PostInput{Title: "x"})
	de := apperrors.ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, "NOT_FOUND", de.Code)

	err = svc.Delete(context.Background(), editorIdentity("editor-1"), "no-such-post")
	de = apperrors.ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestEditorCannotDeleteOthersPost(t *testing.T) {
	repo := testutil.NewMemoryPostRepository()
	post := seedPost(t, repo, "editor-2")
	svc := NewPostService(repo, nil)

	err := svc.Delete(context.Background(), editorIdentity("editor-1"), post.ID)
	de := apperrors.ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, "FORBIDDEN", de.Code)
}

func TestPostMutationsAreAudited(t *testing.T) {
	repo := testutil.NewMemoryPostRepository()
	audits := testutil.NewMemoryAuditRepository()
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, audits, zap.NewNop()).RegisterHandlers()

	svc := NewPostService(repo, dispatcher)
	ctx := context.Background()

	post, err := svc.Create(ctx, editorIdentity("editor-1"), PostInput{Title: "a", Content: "b"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, editorIdentity("editor-1"), post.ID, PostInput{Title: "c"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, editorIdentity("editor-1"), post.ID))

	entries, err := audits.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "delete", entries[0].Action)
	assert.Equal(t, "update", entries[1].Action)
	assert.Equal(t, "create", entries[2].Action)
	for _, entry := range entries {
		assert.Equal(t, "Post", entry.Resource)
		assert.Equal(t, "editor-1", entry.PerformedBy)
	}
}
