package domain

import "time"

type NotificationType string

const (
	NotificationThreadLiked     NotificationType = "thread_liked"
	NotificationThreadCommented NotificationType = "thread_commented"
)

type Notification struct {
	Type      NotificationType `json:"type"`
	Recipient UserId           `json:"-"`
	ActorId   UserId           `json:"actor_id"`
	ThreadId  ThreadId         `json:"thread_id"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}
