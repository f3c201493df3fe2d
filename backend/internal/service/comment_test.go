package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/agora-dev/agora/shared/domain"
	internal_errors "github.com/agora-dev/agora/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockCommentStorage struct {
	createCommentFunc func(ctx context.Context, data domain.CommentCreationData) (domain.Comment, error)
	getCommentFunc    func(ctx context.Context, id domain.CommentId) (domain.Comment, error)
	deleteCommentFunc func(ctx context.Context, id domain.CommentId) error

	mu           sync.Mutex
	createArg    *domain.CommentCreationData
	deleteCalled bool
	deleteIdArg  domain.CommentId
}

func (m *MockCommentStorage) CreateComment(ctx context.Context, data domain.CommentCreationData) (domain.Comment, error) {
	m.mu.Lock()
	m.createArg = &data
	m.mu.Unlock()
	if m.createCommentFunc != nil {
		return m.createCommentFunc(ctx, data)
	}
	return domain.Comment{Id: 1, ThreadId: data.ThreadId, AuthorId: data.AuthorId, Body: data.Body, CreatedAt: testNow}, nil
}

func (m *MockCommentStorage) GetComment(ctx context.Context, id domain.CommentId) (domain.Comment, error) {
	if m.getCommentFunc != nil {
		return m.getCommentFunc(ctx, id)
	}
	return domain.Comment{Id: id, AuthorId: 7}, nil
}

func (m *MockCommentStorage) DeleteComment(ctx context.Context, id domain.CommentId) error {
	m.mu.Lock()
	m.deleteCalled = true
	m.deleteIdArg = id
	m.mu.Unlock()
	if m.deleteCommentFunc != nil {
		return m.deleteCommentFunc(ctx, id)
	}
	return nil
}

// --- Tests ---

func TestCommentCreate(t *testing.T) {
	ctx := context.Background()
	author := &domain.User{Id: 7}

	newSvc := func(thread domain.Thread) (CommentService, *MockCommentStorage, *MockNotifier) {
		storage := &MockCommentStorage{}
		threads := &MockThreadStorage{getThreadFunc: func(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
			return thread, nil
		}}
		notifier := &MockNotifier{}
		return NewComment(storage, threads, notifier, 20), storage, notifier
	}

	t.Run("success notifies thread author", func(t *testing.T) {
		svc, storage, notifier := newSvc(domain.Thread{Id: 3, AuthorId: 1, Title: "Dune"})
		c, err := svc.Create(ctx, 3, author, "  nice <b>read</b><script>x</script> ")
		require.NoError(t, err)
		assert.Equal(t, domain.CommentText("nice <b>read</b>"), c.Body)
		require.NotNil(t, storage.createArg)
		assert.Equal(t, domain.UserId(7), storage.createArg.AuthorId)

		sent := notifier.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, domain.NotificationThreadCommented, sent[0].Type)
		assert.Equal(t, domain.UserId(1), sent[0].Recipient)
	})

	t.Run("own thread no notification", func(t *testing.T) {
		svc, _, notifier := newSvc(domain.Thread{Id: 3, AuthorId: 7})
		_, err := svc.Create(ctx, 3, author, "hello")
		require.NoError(t, err)
		assert.Empty(t, notifier.Sent())
	})

	t.Run("locked thread", func(t *testing.T) {
		svc, storage, _ := newSvc(domain.Thread{Id: 3, AuthorId: 1, IsLocked: true})
		_, err := svc.Create(ctx, 3, author, "hello")
		assert.True(t, internal_errors.Is(err, internal_errors.KindForbidden))
		assert.Nil(t, storage.createArg)
	})

	t.Run("empty after sanitizing", func(t *testing.T) {
		svc, _, _ := newSvc(domain.Thread{Id: 3})
		_, err := svc.Create(ctx, 3, author, "<script>alert(1)</script>")
		assert.True(t, internal_errors.Is(err, internal_errors.KindInvalidInput))
	})

	t.Run("too long", func(t *testing.T) {
		svc, _, _ := newSvc(domain.Thread{Id: 3})
		_, err := svc.Create(ctx, 3, author, strings.Repeat("a", 21))
		assert.True(t, internal_errors.Is(err, internal_errors.KindInvalidInput))
	})

	t.Run("anonymous", func(t *testing.T) {
		svc, _, _ := newSvc(domain.Thread{Id: 3})
		_, err := svc.Create(ctx, 3, nil, "hello")
		assert.True(t, internal_errors.Is(err, internal_errors.KindUnauthorized))
	})
}

func TestCommentDelete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		actor      *domain.User
		wantKind   internal_errors.Kind
		wantDelete bool
	}{
		{"owner", &domain.User{Id: 7}, 0, true},
		{"admin", &domain.User{Id: 1, Admin: true}, 0, true},
		{"stranger", &domain.User{Id: 2}, internal_errors.KindForbidden, false},
		{"anonymous", nil, internal_errors.KindUnauthorized, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := &MockCommentStorage{}
			svc := NewComment(storage, &MockThreadStorage{}, nil, 100)
			err := svc.Delete(ctx, tt.actor, 42)
			if tt.wantDelete {
				require.NoError(t, err)
				assert.Equal(t, domain.CommentId(42), storage.deleteIdArg)
			} else {
				assert.True(t, internal_errors.Is(err, tt.wantKind))
			}
			assert.Equal(t, tt.wantDelete, storage.deleteCalled)
		})
	}

	t.Run("missing comment", func(t *testing.T) {
		storage := &MockCommentStorage{getCommentFunc: func(ctx context.Context, id domain.CommentId) (domain.Comment, error) {
			return domain.Comment{}, internal_errors.NotFound("Comment not found")
		}}
		svc := NewComment(storage, &MockThreadStorage{}, nil, 100)
		err := svc.Delete(ctx, &domain.User{Id: 1, Admin: true}, 1)
		assert.True(t, internal_errors.Is(err, internal_errors.KindNotFound))
	})
}
