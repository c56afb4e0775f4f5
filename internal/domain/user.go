package domain

import (
	"strconv"
	"time"
)

// User is a record from the remote users endpoint. Only the login check reads it.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
}

// Session is the marker persisted after a successful login.
type Session struct {
	UserID    int       `json:"user_id"`
	FirstName string    `json:"first_name"`
	CreatedAt time.Time `json:"created_at"`
}

// UserIDString is the user id in the form it is persisted under.
func (s Session) UserIDString() string {
	return strconv.Itoa(s.UserID)
}
