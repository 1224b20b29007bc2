package domain

import "time"

// Watcher subscribes a user to a ticket's notifications. At most one
// watcher exists per (ticket, user) pair.
type Watcher struct {
	ID        string
	TicketID  string
	UserID    string
	AddedByID string
	CreatedAt time.Time
}
