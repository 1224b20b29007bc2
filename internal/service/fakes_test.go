package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/board-service/internal/domain"
	"github.com/spec-kit/board-service/internal/events"
	"github.com/spec-kit/board-service/internal/repository"
)

// fakeStore is an in-memory repository.Store for service tests. It is
// not transactional; WithinTx simply runs fn against the same state,
// which is enough to assert the orchestration order and record shapes.
type fakeStore struct {
	mu      sync.Mutex
	nextID  int
	users   map[string]*domain.User
	boards  map[string]*domain.Board
	columns map[string]*domain.Column
	members []*domain.BoardMember
	tickets map[string]*domain.Ticket
	comment map[string]*domain.Comment
	watch   []*domain.Watcher

	// history preserves append order, deletedAt marks the moment the
	// ticket row vanished so tests can assert write-before-delete.
	history []domain.HistoryRecord
	archive []domain.HistoryRecord
	deleted map[string]int // ticketID -> len(history) at delete time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   map[string]*domain.User{},
		boards:  map[string]*domain.Board{},
		columns: map[string]*domain.Column{},
		tickets: map[string]*domain.Ticket{},
		comment: map[string]*domain.Comment{},
		deleted: map[string]int{},
	}
}

func (s *fakeStore) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *fakeStore) seedUser(name string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := &domain.User{ID: s.id("user"), Name: name, Email: name + "@example.com", CreatedAt: time.Now()}
	s.users[user.ID] = user
	return user
}

func (s *fakeStore) seedBoard(ownerID string) *domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	board := &domain.Board{ID: s.id("board"), Name: "Board", OwnerID: ownerID, CreatedAt: time.Now()}
	s.boards[board.ID] = board
	s.members = append(s.members, &domain.BoardMember{
		ID: s.id("member"), BoardID: board.ID, UserID: ownerID, Role: domain.BoardRoleOwner,
	})
	return board
}

func (s *fakeStore) seedColumn(boardID, name string) *domain.Column {
	s.mu.Lock()
	defer s.mu.Unlock()
	column := &domain.Column{ID: s.id("col"), BoardID: boardID, Name: name, Position: len(s.columns)}
	s.columns[column.ID] = column
	return column
}

func (s *fakeStore) historyFor(ticketID string) []domain.HistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.HistoryRecord
	for _, record := range s.history {
		if record.TicketID == ticketID {
			out = append(out, record)
		}
	}
	return out
}

func (s *fakeStore) Users() repository.UserRepository       { return (*fakeUsers)(s) }
func (s *fakeStore) Boards() repository.BoardRepository     { return (*fakeBoards)(s) }
func (s *fakeStore) Columns() repository.ColumnRepository   { return (*fakeColumns)(s) }
func (s *fakeStore) Members() repository.MemberRepository   { return (*fakeMembers)(s) }
func (s *fakeStore) Tickets() repository.TicketRepository   { return (*fakeTickets)(s) }
func (s *fakeStore) Comments() repository.CommentRepository { return (*fakeComments)(s) }
func (s *fakeStore) Watchers() repository.WatcherRepository { return (*fakeWatchers)(s) }
func (s *fakeStore) History() repository.HistoryRepository  { return (*fakeHistory)(s) }
func (s *fakeStore) Archive() repository.ArchiveRepository  { return (*fakeArchive)(s) }

func (s *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return fn(ctx, s)
}

type fakeUsers fakeStore

func (f *fakeUsers) Create(ctx context.Context, user *domain.User) error {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.id("user")
	user.CreatedAt = time.Now()
	s.users[user.ID] = user
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeBoards fakeStore

func (f *fakeBoards) Create(ctx context.Context, board *domain.Board) error {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	board.ID = s.id("board")
	board.CreatedAt = time.Now()
	s.boards[board.ID] = board
	return nil
}

func (f *fakeBoards) GetByID(ctx context.Context, id string) (*domain.Board, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	board, ok := s.boards[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return board, nil
}

func (f *fakeBoards) ListByUser(ctx context.Context, userID string) ([]domain.Board, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Board
	for _, member := range s.members {
		if member.UserID != userID {
			continue
		}
		if board, ok := s.boards[member.BoardID]; ok {
			out = append(out, *board)
		}
	}
	return out, nil
}

func (f *fakeBoards) Delete(ctx context.Context, id string) error {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boards[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.boards, id)
	return nil
}

type fakeColumns fakeStore

func (f *fakeColumns) Create(ctx context.Context, column *domain.Column) error {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	column.ID = s.id("col")
	s.columns[column.ID] = column
	return nil
}

func (f *fakeColumns) Update(ctx context.Context, column *domain.Column) error {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.columns[column.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.columns[column.ID] = column
	return nil
}

func (f *fakeColumns) GetByID(ctx context.Context, id string) (*domain.Column, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	column, ok := s.columns[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return column, nil
}

func (f *fakeColumns) ListByBoard(ctx context.Context, boardID string) ([]domain.Column, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Column
	for _, column := range s.columns {
		if column.BoardID == boardID {
			out = append(out, *column)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeColumns) ExistsByName(ctx context.Context, boardID, name, excludeID string) (bool, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, column := range s.columns {
		if column.BoardID == boardID && column.Name == name && column.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeColumns) Delete(ctx context.Context, id string) error {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.columns[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.columns, id)
	return nil
}

type fakeMembers fakeStore

func (f *fakeMembers) Add(ctx context.Context, member *domain.BoardMember) (*domain.BoardMember, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.members {
		if existing.BoardID == member.BoardID && existing.UserID == member.UserID {
			return nil, nil
		}
	}
	member.ID = s.id("member")
	member.CreatedAt = time.Now()
	s.members = append(s.members, member)
	return member, nil
}

func (f *fakeMembers) Remove(ctx context.Context, boardID, userID string) (bool, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, member := range s.members {
		if member.BoardID == boardID && member.UserID == userID {
			s.members = append(s.members[:i], s.members[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMembers) IsMember(ctx context.Context, boardID, userID string) (bool, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, member := range s.members {
		if member.BoardID == boardID && member.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMembers) ListByBoard(ctx context.Context, boardID string) ([]domain.BoardMember, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.BoardMember
	for _, member := range s.members {
		if member.BoardID == boardID {
			out = append(out, *member)
		}
	}
	return out, nil
}

type fakeTickets fakeStore

func (f *fakeTickets) Create(ctx context.Context, ticket *domain.Ticket) error {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket.ID = s.id("ticket")
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	s.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTickets) Update(ctx context.Context, ticket *domain.Ticket) error {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	copied := *ticket
	s.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTickets) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTickets) ListByBoard(ctx context.Context, boardID string, limit, offset int) ([]domain.Ticket, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range s.tickets {
		if ticket.BoardID == boardID {
			out = append(out, *ticket)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTickets) Delete(ctx context.Context, id string) error {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.tickets, id)
	s.deleted[id] = len(s.history)
	// Mimic the cascade on ticket_history.
	kept := s.history[:0]
	for _, record := range s.history {
		if record.TicketID != id {
			kept = append(kept, record)
		}
	}
	s.history = kept
	return nil
}

type fakeComments fakeStore

func (f *fakeComments) Create(ctx context.Context, comment *domain.Comment) error {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	comment.ID = s.id("comment")
	comment.CreatedAt = time.Now()
	copied := *comment
	s.comment[comment.ID] = &copied
	return nil
}

func (f *fakeComments) Update(ctx context.Context, comment *domain.Comment) error {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comment[comment.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *comment
	s.comment[comment.ID] = &copied
	return nil
}

func (f *fakeComments) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comment[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *comment
	return &copied, nil
}

func (f *fakeComments) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Comment
	for _, comment := range s.comment {
		if comment.TicketID == ticketID {
			out = append(out, *comment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeComments) Delete(ctx context.Context, id string) error {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comment[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.comment, id)
	return nil
}

type fakeWatchers fakeStore

func (f *fakeWatchers) Add(ctx context.Context, watcher *domain.Watcher) (*domain.Watcher, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.watch {
		if existing.TicketID == watcher.TicketID && existing.UserID == watcher.UserID {
			return nil, nil
		}
	}
	watcher.ID = s.id("watcher")
	watcher.CreatedAt = time.Now()
	s.watch = append(s.watch, watcher)
	return watcher, nil
}

func (f *fakeWatchers) Remove(ctx context.Context, ticketID, userID string) (bool, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, watcher := range s.watch {
		if watcher.TicketID == ticketID && watcher.UserID == userID {
			s.watch = append(s.watch[:i], s.watch[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeWatchers) IsWatching(ctx context.Context, ticketID, userID string) (bool, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, watcher := range s.watch {
		if watcher.TicketID == ticketID && watcher.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeWatchers) ListByTicket(ctx context.Context, ticketID string) ([]domain.Watcher, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Watcher
	for _, watcher := range s.watch {
		if watcher.TicketID == ticketID {
			out = append(out, *watcher)
		}
	}
	return out, nil
}

type fakeHistory fakeStore

func (f *fakeHistory) Append(ctx context.Context, record *domain.HistoryRecord) error {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	record.ID = s.id("hist")
	record.CreatedAt = time.Now()
	s.history = append(s.history, *record)
	return nil
}

func (f *fakeHistory) ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryRecord, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.HistoryRecord
	for _, record := range s.history {
		if record.TicketID == ticketID {
			out = append(out, record)
		}
	}
	return out, nil
}

type fakeArchive fakeStore

func (f *fakeArchive) Append(ctx context.Context, record *domain.HistoryRecord) error {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	if copied.ID == "" {
		copied.ID = s.id("arch")
	}
	s.archive = append(s.archive, copied)
	return nil
}

func (f *fakeArchive) ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryRecord, error) {
	s := (*fakeStore)(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.HistoryRecord
	for _, record := range s.archive {
		if record.TicketID == ticketID {
			out = append(out, record)
		}
	}
	return out, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *recordingDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event{}, d.events...)
}
