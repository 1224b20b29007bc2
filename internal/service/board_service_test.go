package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/board-service/internal/domain"
	"github.com/spec-kit/board-service/internal/events"
	apperrors "github.com/spec-kit/board-service/pkg/apperrors"
)

func newBoardService(store *fakeStore, dispatcher *recordingDispatcher) *BoardService {
	return NewBoardService(store, dispatcher, zap.NewNop())
}

func TestCreateBoardOwnerBecomesMember(t *testing.T) {
	store := newFakeStore()
	svc := newBoardService(store, &recordingDispatcher{})
	owner := store.seedUser("alice")

	board, err := svc.CreateBoard(context.Background(), owner.ID, "Sprint 12")
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	if board.OwnerID != owner.ID {
		t.Errorf("owner = %s, want %s", board.OwnerID, owner.ID)
	}
	if err := svc.EnsureMember(context.Background(), board.ID, owner.ID); err != nil {
		t.Errorf("owner is not a member: %v", err)
	}
}

func TestEnsureMemberRejectsOutsiders(t *testing.T) {
	store := newFakeStore()
	svc := newBoardService(store, &recordingDispatcher{})
	owner := store.seedUser("alice")
	outsider := store.seedUser("mallory")
	board := store.seedBoard(owner.ID)

	err := svc.EnsureMember(context.Background(), board.ID, outsider.ID)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "FORBIDDEN" {
		t.Fatalf("error = %v, want FORBIDDEN", err)
	}
}

func TestAddMemberOwnerOnly(t *testing.T) {
	store := newFakeStore()
	svc := newBoardService(store, &recordingDispatcher{})
	owner := store.seedUser("alice")
	member := store.seedUser("bob")
	board := store.seedBoard(owner.ID)

	if _, err := svc.AddMember(context.Background(), member.ID, board.ID, member.ID); err == nil {
		t.Error("non-owner added a member")
	}

	added, err := svc.AddMember(context.Background(), owner.ID, board.ID, member.ID)
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if added.Role != domain.BoardRoleMember {
		t.Errorf("role = %s, want MEMBER", added.Role)
	}

	// Adding twice conflicts.
	_, err = svc.AddMember(context.Background(), owner.ID, board.ID, member.ID)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "CONFLICT" {
		t.Fatalf("error = %v, want CONFLICT", err)
	}
}

func TestRemoveMemberRules(t *testing.T) {
	store := newFakeStore()
	svc := newBoardService(store, &recordingDispatcher{})
	owner := store.seedUser("alice")
	member := store.seedUser("bob")
	board := store.seedBoard(owner.ID)
	if _, err := svc.AddMember(context.Background(), owner.ID, board.ID, member.ID); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	// The owner cannot be removed, not even by themselves.
	if err := svc.RemoveMember(context.Background(), owner.ID, board.ID, owner.ID); err == nil {
		t.Error("owner removal accepted")
	}
	// A member may remove themselves.
	if err := svc.RemoveMember(context.Background(), member.ID, board.ID, member.ID); err != nil {
		t.Errorf("self-removal failed: %v", err)
	}
}

func TestDeleteBoardOwnerOnlyAndNotifies(t *testing.T) {
	store := newFakeStore()
	dispatcher := &recordingDispatcher{}
	svc := newBoardService(store, dispatcher)
	owner := store.seedUser("alice")
	other := store.seedUser("bob")
	board := store.seedBoard(owner.ID)

	if err := svc.DeleteBoard(context.Background(), other.ID, board.ID); err == nil {
		t.Error("non-owner deleted the board")
	}
	if err := svc.DeleteBoard(context.Background(), owner.ID, board.ID); err != nil {
		t.Fatalf("DeleteBoard: %v", err)
	}

	published := dispatcher.published()
	if len(published) != 1 || published[0].Type != events.EventBoardDeleted {
		t.Fatalf("events = %+v, want single BOARD_DELETED", published)
	}
}

func TestColumnNameUniquePerBoard(t *testing.T) {
	store := newFakeStore()
	svc := newBoardService(store, &recordingDispatcher{})
	owner := store.seedUser("alice")
	board := store.seedBoard(owner.ID)

	if _, err := svc.CreateColumn(context.Background(), owner.ID, board.ID, "Backlog", 0); err != nil {
		t.Fatalf("CreateColumn: %v", err)
	}
	_, err := svc.CreateColumn(context.Background(), owner.ID, board.ID, "Backlog", 1)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "CONFLICT" {
		t.Fatalf("error = %v, want CONFLICT", err)
	}

	// The same name is fine on a different board.
	otherBoard := store.seedBoard(owner.ID)
	if _, err := svc.CreateColumn(context.Background(), owner.ID, otherBoard.ID, "Backlog", 0); err != nil {
		t.Errorf("same name on another board rejected: %v", err)
	}
}

func TestUpdateColumnRenameConflict(t *testing.T) {
	store := newFakeStore()
	svc := newBoardService(store, &recordingDispatcher{})
	owner := store.seedUser("alice")
	board := store.seedBoard(owner.ID)

	backlog, err := svc.CreateColumn(context.Background(), owner.ID, board.ID, "Backlog", 0)
	if err != nil {
		t.Fatalf("CreateColumn: %v", err)
	}
	if _, err := svc.CreateColumn(context.Background(), owner.ID, board.ID, "Done", 1); err != nil {
		t.Fatalf("CreateColumn: %v", err)
	}

	if _, err := svc.UpdateColumn(context.Background(), owner.ID, backlog.ID, "Done", 0); err == nil {
		t.Error("rename onto an existing name accepted")
	}
	// Renaming to its own current name is allowed (excludeID).
	if _, err := svc.UpdateColumn(context.Background(), owner.ID, backlog.ID, "Backlog", 5); err != nil {
		t.Errorf("same-name update rejected: %v", err)
	}
}
