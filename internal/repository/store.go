package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgx operations repositories need. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so the same repository code runs
// inside or outside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store bundles all repositories behind one transaction scope. WithinTx
// runs fn against a store whose repositories share a single transaction;
// any error rolls back every staged write.
type Store interface {
	Users() UserRepository
	Boards() BoardRepository
	Columns() ColumnRepository
	Members() MemberRepository
	Tickets() TicketRepository
	Comments() CommentRepository
	Watchers() WatcherRepository
	History() HistoryRepository
	Archive() ArchiveRepository

	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type pgStore struct {
	db   DB
	pool *pgxpool.Pool
}

// NewStore builds the Postgres-backed store.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{db: pool, pool: pool}
}

func (s *pgStore) Users() UserRepository       { return &userRepository{db: s.db} }
func (s *pgStore) Boards() BoardRepository     { return &boardRepository{db: s.db} }
func (s *pgStore) Columns() ColumnRepository   { return &columnRepository{db: s.db} }
func (s *pgStore) Members() MemberRepository   { return &memberRepository{db: s.db} }
func (s *pgStore) Tickets() TicketRepository   { return &ticketRepository{db: s.db} }
func (s *pgStore) Comments() CommentRepository { return &commentRepository{db: s.db} }
func (s *pgStore) Watchers() WatcherRepository { return &watcherRepository{db: s.db} }
func (s *pgStore) History() HistoryRepository  { return &historyRepository{db: s.db} }
func (s *pgStore) Archive() ArchiveRepository  { return &archiveRepository{db: s.db} }

func (s *pgStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if s.pool == nil {
		// Already transaction-scoped; reuse the ambient transaction.
		return fn(ctx, s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	txStore := &pgStore{db: tx}
	if err := fn(ctx, txStore); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
