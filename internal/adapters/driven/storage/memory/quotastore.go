package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driven"
)

// Ensure QuotaStore implements the interface.
var _ driven.QuotaGate = (*QuotaStore)(nil)

// QuotaStore is an in-memory daily quota gate.
// A limit of zero or less disables the gate.
type QuotaStore struct {
	mu     sync.Mutex
	limit  int
	counts map[string]int
	now    func() time.Time
}

// NewQuotaStore creates a quota gate allowing limit recognitions per user per day.
func NewQuotaStore(limit int) *QuotaStore {
	return &QuotaStore{
		limit:  limit,
		counts: make(map[string]int),
		now:    time.Now,
	}
}

// Check returns domain.ErrQuotaExceeded when the user's daily count is at the limit.
func (s *QuotaStore) Check(_ context.Context, userID string) error {
	if s.limit <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts[s.key(userID)] >= s.limit {
		return domain.ErrQuotaExceeded
	}
	return nil
}

// Increment records one recognition for the user today.
func (s *QuotaStore) Increment(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[s.key(userID)]++
	return nil
}

func (s *QuotaStore) key(userID string) string {
	return userID + "|" + s.now().UTC().Format(time.DateOnly)
}
