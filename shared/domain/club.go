package domain

import "time"

// Club is a community that owns threads and has members.
type Club struct {
	Id          ClubId
	Name        string
	Description string
	OwnerId     UserId
	MediaId     *MediaId
	CreatedAt   time.Time
}

// Media is a title (book, film, game) that communities can be linked to.
type Media struct {
	Id          MediaId
	Title       string
	Description string
	CreatedAt   time.Time
}
