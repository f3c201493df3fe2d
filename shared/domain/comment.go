package domain

import "time"

type Comment struct {
	Id        CommentId   `json:"id"`
	ThreadId  ThreadId    `json:"thread_id"`
	AuthorId  UserId      `json:"author_id"`
	Body      CommentText `json:"body"`
	CreatedAt time.Time   `json:"created_at"`
}

// to iterate thru layers: handler -> service -> storage
type CommentCreationData struct {
	ThreadId ThreadId
	AuthorId UserId
	Body     CommentText
}
