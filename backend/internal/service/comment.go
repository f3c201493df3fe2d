package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/agora-dev/agora/shared/domain"
	internal_errors "github.com/agora-dev/agora/shared/errors"
)

type CommentService interface {
	Create(ctx context.Context, threadId domain.ThreadId, author *domain.User, body string) (domain.Comment, error)
	Delete(ctx context.Context, actor *domain.User, id domain.CommentId) error
}

type CommentStorage interface {
	// CreateComment inserts the comment, increments comment_count and sets
	// last_activity_at to the comment time in one transaction.
	CreateComment(ctx context.Context, data domain.CommentCreationData) (domain.Comment, error)
	GetComment(ctx context.Context, id domain.CommentId) (domain.Comment, error)
	// DeleteComment removes the comment and decrements comment_count, never below 0.
	DeleteComment(ctx context.Context, id domain.CommentId) error
}

type Comment struct {
	storage   CommentStorage
	threads   ThreadStorage
	notifier  Notifier
	policy    *bluemonday.Policy
	maxLength int
}

func NewComment(storage CommentStorage, threads ThreadStorage, notifier Notifier, maxLength int) CommentService {
	return &Comment{
		storage:   storage,
		threads:   threads,
		notifier:  notifier,
		policy:    bluemonday.UGCPolicy(),
		maxLength: maxLength,
	}
}

func (c *Comment) Create(ctx context.Context, threadId domain.ThreadId, author *domain.User, body string) (domain.Comment, error) {
	if author == nil {
		return domain.Comment{}, Authorize(nil, 0)
	}
	body = strings.TrimSpace(c.policy.Sanitize(body))
	if body == "" {
		return domain.Comment{}, internal_errors.InvalidInput("Comment is empty")
	}
	if n := utf8.RuneCountInString(body); n > c.maxLength {
		return domain.Comment{}, internal_errors.InvalidInput(fmt.Sprintf("Comment is too long: %d characters, max %d", n, c.maxLength))
	}

	thread, err := c.threads.GetThread(ctx, threadId)
	if err != nil {
		return domain.Comment{}, err
	}
	if thread.IsLocked {
		return domain.Comment{}, internal_errors.Forbidden("Thread is locked")
	}

	comment, err := c.storage.CreateComment(ctx, domain.CommentCreationData{
		ThreadId: threadId,
		AuthorId: author.Id,
		Body:     domain.CommentText(body),
	})
	if err != nil {
		return domain.Comment{}, err
	}

	if thread.AuthorId != author.Id && c.notifier != nil {
		c.notifier.Notify(domain.Notification{
			Type:      domain.NotificationThreadCommented,
			Recipient: thread.AuthorId,
			ActorId:   author.Id,
			ThreadId:  threadId,
			Message:   fmt.Sprintf("New comment in %q", thread.Title),
		})
	}
	return comment, nil
}

func (c *Comment) Delete(ctx context.Context, actor *domain.User, id domain.CommentId) error {
	if actor == nil {
		return Authorize(nil, 0)
	}
	comment, err := c.storage.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(actor, comment.AuthorId); err != nil {
		return err
	}
	return c.storage.DeleteComment(ctx, id)
}
