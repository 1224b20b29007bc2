package events

import "time"

// EventType enumerates board notification identifiers.
type EventType string

const (
	EventBoardUpdated EventType = "BOARD_UPDATED"
	EventBoardDeleted EventType = "BOARD_DELETED"
)

// Event describes a committed board change for live viewers. BoardID is
// the fan-out channel; EntityID is the mutated entity (ticket, comment,
// watcher or the board itself).
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	BoardID   string    `json:"board_id"`
	EntityID  string    `json:"entityId"`
	Timestamp time.Time `json:"timestamp"`
}
