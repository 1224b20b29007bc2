package dto

import (
	"encoding/json"
	"testing"
)

func TestUpdateTicketRequestAssigneePresence(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		submitted bool
		assignee  *string
	}{
		{
			name:      "absent",
			payload:   `{"title":"x"}`,
			submitted: false,
		},
		{
			name:      "explicit null",
			payload:   `{"assignee_id":null}`,
			submitted: true,
		},
		{
			name:      "set",
			payload:   `{"assignee_id":"user-2"}`,
			submitted: true,
			assignee:  strPtrForTest("user-2"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var req UpdateTicketRequest
			if err := json.Unmarshal([]byte(tc.payload), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if req.AssigneeSubmitted() != tc.submitted {
				t.Errorf("AssigneeSubmitted() = %v, want %v", req.AssigneeSubmitted(), tc.submitted)
			}
			switch {
			case tc.assignee == nil && req.AssigneeID != nil:
				t.Errorf("AssigneeID = %v, want nil", *req.AssigneeID)
			case tc.assignee != nil && (req.AssigneeID == nil || *req.AssigneeID != *tc.assignee):
				t.Errorf("AssigneeID = %v, want %v", req.AssigneeID, *tc.assignee)
			}
		})
	}
}

func TestUpdateTicketRequestPartialFields(t *testing.T) {
	var req UpdateTicketRequest
	if err := json.Unmarshal([]byte(`{"priority":"HIGH"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Title != nil || req.Description != nil || req.ColumnID != nil {
		t.Error("unsubmitted fields must stay nil")
	}
	if req.Priority == nil || *req.Priority != "HIGH" {
		t.Errorf("Priority = %v, want HIGH", req.Priority)
	}
}

func strPtrForTest(s string) *string { return &s }
