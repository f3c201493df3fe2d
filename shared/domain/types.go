package domain

type (
	UserId    = int64
	ClubId    = int64
	ThreadId  = int64
	CommentId = int64
	MediaId   = int64

	ThreadTitle = string
	CommentText = string
)
