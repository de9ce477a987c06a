package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/account"
)

type memoryEntry struct {
	principal account.Principal
	expiresAt time.Time
}

// MemoryStore is a process local Store. Expired entries are treated as absent
// on read and removed by Sweep.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
}

func (s *MemoryStore) Create(_ context.Context, principal account.Principal) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.mu.Lock()
	s.entries[token] = memoryEntry{
		principal: principal,
		expiresAt: s.now().Add(s.ttl),
	}
	s.mu.Unlock()

	return token, nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (*account.Principal, error) {
	s.mu.RLock()
	entry, ok := s.entries[token]
	s.mu.RUnlock()

	if !ok || !s.now().Before(entry.expiresAt) {
		return nil, ErrNotFound
	}

	principal := entry.principal
	return &principal, nil
}

func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.entries, token)
	s.mu.Unlock()
	return nil
}

// Sweep removes expired entries and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, token)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// StartSweeper runs Sweep every interval until Close is called.
func (s *MemoryStore) StartSweeper(interval time.Duration, logger *slog.Logger) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if removed := s.Sweep(); removed > 0 {
					logger.Debug("expired sessions swept", "removed", removed)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

// Close stops the sweeper and flushes every entry.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()

	s.mu.Lock()
	s.entries = make(map[string]memoryEntry)
	s.mu.Unlock()

	return nil
}
