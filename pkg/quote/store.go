package quote

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
)

// FirstID is the id given to the first quote created in a MemoryStore.
const FirstID = 1000

// Store persists quotes on behalf of users.
type Store interface {
	List(ctx context.Context) ([]Quote, error)
	Get(ctx context.Context, id int64) (Quote, error)
	Create(ctx context.Context, userID int64, p Patch) (Quote, error)
	Update(ctx context.Context, userID, id int64, p Patch) (Quote, error)
	Delete(ctx context.Context, id int64) (Quote, error)
}

// MemoryStore is a Store kept in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	quotes map[int64]Quote
	nextID int64
}

// NewMemoryStore returns a store holding seed.
func NewMemoryStore(seed ...Quote) *MemoryStore {
	s := &MemoryStore{
		quotes: make(map[int64]Quote, len(seed)),
		nextID: FirstID,
	}
	for _, q := range seed {
		s.quotes[q.ID] = q
		if q.ID >= s.nextID {
			s.nextID = q.ID + 1
		}
	}
	return s
}

// SeedQuotes returns the quotes a development server starts with.
func SeedQuotes() []Quote {
	return []Quote{
		{ID: 100, CID: 123, Quote: "test quote 100", Author: "test author"},
		{ID: 101, CID: 123, Quote: "test quote 101", Author: "unknown"},
	}
}

// List returns every quote, newest id first.
func (s *MemoryStore) List(ctx context.Context) ([]Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotes[id]
	if !ok {
		return Quote{}, notFound(id)
	}
	return q, nil
}

func (s *MemoryStore) Create(ctx context.Context, userID int64, p Patch) (Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := Quote{ID: s.nextID, CID: userID}
	p.apply(&q)
	s.quotes[q.ID] = q
	s.nextID++
	return q, nil
}

func (s *MemoryStore) Update(ctx context.Context, userID, id int64, p Patch) (Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quotes[id]
	if !ok {
		return Quote{}, notFound(id)
	}
	p.apply(&q)
	s.quotes[id] = q
	return q, nil
}

// Delete removes the quote and returns it as it was.
func (s *MemoryStore) Delete(ctx context.Context, id int64) (Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quotes[id]
	if !ok {
		return Quote{}, notFound(id)
	}
	delete(s.quotes, id)
	return q, nil
}

// Len returns the number of stored quotes.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quotes)
}

func notFound(id int64) error {
	return fmt.Errorf("%w: quote %d", ErrNotFound, id)
}

// UserFromToken parses an auth token into a user id.
func UserFromToken(token string) (int64, error) {
	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidToken, token)
	}
	return id, nil
}
