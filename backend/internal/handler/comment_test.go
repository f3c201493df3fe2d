package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agora-dev/agora/shared/api"
	"github.com/agora-dev/agora/shared/domain"
	internal_errors "github.com/agora-dev/agora/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment(t *testing.T) {
	route := "/v1/threads/4/comments"

	t.Run("created", func(t *testing.T) {
		comments := &MockCommentService{
			MockCreate: func(threadId domain.ThreadId, author *domain.User, body string) (domain.Comment, error) {
				assert.Equal(t, domain.ThreadId(4), threadId)
				assert.Same(t, testMember, author)
				assert.Equal(t, "great read", body)
				return domain.Comment{Id: 90, ThreadId: threadId, AuthorId: author.Id, Body: domain.CommentText(body), CreatedAt: time.Now()}, nil
			},
		}
		router := newTestRouter(&Handler{comment: comments}, testMember)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, route, bytes.NewBufferString(`{"body":"great read"}`)))

		require.Equal(t, http.StatusCreated, rr.Code)
		var resp api.CreateCommentResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, domain.CommentId(90), resp.Id)
		assert.Equal(t, testMember.Id, resp.AuthorId)
	})

	t.Run("missing body field is 400", func(t *testing.T) {
		called := false
		comments := &MockCommentService{
			MockCreate: func(threadId domain.ThreadId, author *domain.User, body string) (domain.Comment, error) {
				called = true
				return domain.Comment{}, nil
			},
		}
		router := newTestRouter(&Handler{comment: comments}, testMember)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, route, bytes.NewBufferString(`{}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.False(t, called)
	})

	t.Run("locked thread is 403", func(t *testing.T) {
		comments := &MockCommentService{
			MockCreate: func(threadId domain.ThreadId, author *domain.User, body string) (domain.Comment, error) {
				return domain.Comment{}, internal_errors.Forbidden("Thread is locked")
			},
		}
		router := newTestRouter(&Handler{comment: comments}, testMember)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, route, bytes.NewBufferString(`{"body":"hi"}`)))

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "Thread is locked")
	})
}

func TestDeleteComment(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		var gotId domain.CommentId
		comments := &MockCommentService{
			MockDelete: func(actor *domain.User, id domain.CommentId) error {
				gotId = id
				return nil
			},
		}
		router := newTestRouter(&Handler{comment: comments}, testAdmin)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/comments/17", nil))

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, domain.CommentId(17), gotId)
	})

	t.Run("anonymous is 401", func(t *testing.T) {
		comments := &MockCommentService{
			MockDelete: func(actor *domain.User, id domain.CommentId) error {
				if actor == nil {
					return internal_errors.Unauthorized("Please sign-in")
				}
				return nil
			},
		}
		router := newTestRouter(&Handler{comment: comments}, nil)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/comments/17", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
