package domain

import "time"

// BoardRole enumerates membership roles on a board.
type BoardRole string

const (
	BoardRoleOwner  BoardRole = "OWNER"
	BoardRoleMember BoardRole = "MEMBER"
)

// Board is the top-level container owning columns and tickets.
type Board struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Column is a named, ordered workflow stage within a board.
type Column struct {
	ID        string
	BoardID   string
	Name      string
	Position  int
	CreatedAt time.Time
}

// BoardMember links a user to a board with a role.
type BoardMember struct {
	ID        string
	BoardID   string
	UserID    string
	Role      BoardRole
	CreatedAt time.Time
}
