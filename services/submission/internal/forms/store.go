package forms

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGEventStore records processed event ids:
//
//	CREATE TABLE form_events (
//	    event_id     text PRIMARY KEY,
//	    processed_at timestamptz NOT NULL
//	);
type PGEventStore struct {
	DB *pgxpool.Pool
}

func NewPGEventStore(db *pgxpool.Pool) *PGEventStore {
	return &PGEventStore{DB: db}
}

// MarkProcessed claims the event id. The conflict target makes concurrent
// deliveries of the same event race safely: exactly one caller sees
// inserted=true.
func (s *PGEventStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
INSERT INTO form_events(event_id, processed_at)
VALUES($1, $2)
ON CONFLICT (event_id) DO NOTHING
`, eventID, time.Now().UTC())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MemEventStore is the in-process variant for tests and local development.
type MemEventStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemEventStore() *MemEventStore {
	return &MemEventStore{seen: make(map[string]struct{})}
}

func (s *MemEventStore) MarkProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[eventID]; ok {
		return false, nil
	}
	s.seen[eventID] = struct{}{}
	return true, nil
}
