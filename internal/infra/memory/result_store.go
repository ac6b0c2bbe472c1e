package memory

import (
	"context"
	"sync"

	"quiz-room-service/internal/domain"
)

// ResultStore keeps completed session results in memory. It stands in for
// the durable writer when no database is configured.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]domain.SessionResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string]domain.SessionResult)}
}

func (s *ResultStore) SaveResult(_ context.Context, result domain.SessionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.RoomCode] = result
	return nil
}

// Result returns the stored record for a room code, if any.
func (s *ResultStore) Result(roomCode string) (domain.SessionResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[roomCode]
	return result, ok
}
