package service

import (
	"github.com/spec-kit/board-service/internal/domain"
)

// Editable ticket fields. Structural fields (identity, timestamps, the
// parent board) are never diffed.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPriority    = "priority"
	FieldColumn      = "column_id"
	FieldAssignee    = "assignee_id"
)

// TicketPatch is a partial update. Nil pointers mean "field not
// submitted" (PATCH semantics). SetAssignee distinguishes "assignee not
// submitted" from "assignee submitted as null" (unassign).
type TicketPatch struct {
	Title       *string
	Description *string
	Priority    *domain.TicketPriority
	ColumnID    *string
	AssigneeID  *string
	SetAssignee bool
}

// FieldChange is one diffed field with its derived history action. Old
// and new carry the display-string form of the values.
type FieldChange struct {
	Action domain.HistoryAction
	Field  string
	Old    *string
	New    *string
}

// ComputeChanges diffs the requested partial update against the current
// ticket snapshot. Only submitted fields are considered, and a field is
// reported only when the submitted value differs from the current one.
// The result iterates fields in a fixed order: title, description,
// priority, column, assignee. Pure function over its inputs.
func ComputeChanges(current *domain.Ticket, patch TicketPatch) []FieldChange {
	var changes []FieldChange

	if patch.Title != nil && *patch.Title != current.Title {
		changes = append(changes, FieldChange{
			Action: domain.ActionTicketUpdated,
			Field:  FieldTitle,
			Old:    strPtr(current.Title),
			New:    strPtr(*patch.Title),
		})
	}
	if patch.Description != nil && *patch.Description != current.Description {
		changes = append(changes, FieldChange{
			Action: domain.ActionTicketUpdated,
			Field:  FieldDescription,
			Old:    strPtr(current.Description),
			New:    strPtr(*patch.Description),
		})
	}
	if patch.Priority != nil && *patch.Priority != current.Priority {
		changes = append(changes, FieldChange{
			Action: domain.ActionPriorityChanged,
			Field:  FieldPriority,
			Old:    strPtr(string(current.Priority)),
			New:    strPtr(string(*patch.Priority)),
		})
	}
	if patch.ColumnID != nil && *patch.ColumnID != current.ColumnID {
		changes = append(changes, FieldChange{
			Action: domain.ActionStatusChanged,
			Field:  FieldColumn,
			Old:    strPtr(current.ColumnID),
			New:    strPtr(*patch.ColumnID),
		})
	}
	if patch.SetAssignee && !refEqual(patch.AssigneeID, current.AssigneeID) {
		changes = append(changes, FieldChange{
			Action: domain.ActionAssigneeChanged,
			Field:  FieldAssignee,
			Old:    copyPtr(current.AssigneeID),
			New:    copyPtr(patch.AssigneeID),
		})
	}

	return changes
}

// applyChange mutates the ticket for one diffed field. The switch is
// the closed set of editable-field handlers; an unknown field is a
// programming error caught by the orchestrator.
func applyChange(ticket *domain.Ticket, patch TicketPatch, change FieldChange) bool {
	switch change.Field {
	case FieldTitle:
		ticket.Title = *patch.Title
	case FieldDescription:
		ticket.Description = *patch.Description
	case FieldPriority:
		ticket.Priority = *patch.Priority
	case FieldColumn:
		ticket.ColumnID = *patch.ColumnID
	case FieldAssignee:
		ticket.AssigneeID = copyPtr(patch.AssigneeID)
	default:
		return false
	}
	return true
}

func refEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func strPtr(s string) *string {
	return &s
}

func copyPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
