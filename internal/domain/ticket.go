package domain

import "time"

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// ValidPriority reports whether p is a known priority value.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// Ticket is the aggregate for board work items. A ticket's workflow
// status is the column it currently sits in.
type Ticket struct {
	ID          string
	BoardID     string
	ColumnID    string
	Title       string
	Description string
	Priority    TicketPriority
	AssigneeID  *string
	CreatedByID *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
