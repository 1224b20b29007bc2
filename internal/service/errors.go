package service

import (
	"errors"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/spec-kit/board-service/pkg/apperrors"
)

func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func ticketErr(err error, ticketID string) error {
	if isNotFound(err) {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return apperrors.MapError(err)
}

func boardErr(err error, boardID string) error {
	if isNotFound(err) {
		return apperrors.NewNotFound("board", map[string]any{"board_id": boardID})
	}
	return apperrors.MapError(err)
}
