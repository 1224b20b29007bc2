package dto

import "time"

// CreateBoardRequest payload.
type CreateBoardRequest struct {
	Name string `json:"name"`
}

// BoardResponse is the board shape with its columns.
type BoardResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	OwnerID   string           `json:"owner_id"`
	Columns   []ColumnResponse `json:"columns,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// ColumnRequest payload for creating or updating a column.
type ColumnRequest struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// ColumnResponse is the column shape.
type ColumnResponse struct {
	ID       string `json:"id"`
	BoardID  string `json:"board_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// MemberRequest payload for adding a member.
type MemberRequest struct {
	UserID string `json:"user_id"`
}

// MemberResponse is the membership shape.
type MemberResponse struct {
	ID      string `json:"id"`
	BoardID string `json:"board_id"`
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
}
