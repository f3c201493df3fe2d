package domain

import "time"

// User is the resolved identity of a request. A nil *User means anonymous.
type User struct {
	Id        UserId
	Admin     bool
	CreatedAt time.Time
}
