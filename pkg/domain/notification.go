package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app message for the logged-in user.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// UnreadCount counts notifications not yet marked read.
func UnreadCount(ns []Notification) int {
	n := 0
	for _, x := range ns {
		if !x.IsRead {
			n++
		}
	}
	return n
}
