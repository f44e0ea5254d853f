package store

import (
	"sync"
	"time"

	"github.com/anooppatell7/education-pixel-backend/internal/model"
)

// PracticeResultStore holds informal test results in process memory.
// Entries are keyed by a locally generated identifier and are not visible
// to other instances; they disappear on restart or after the TTL.
type PracticeResultStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	results map[string]practiceEntry

	stop     chan struct{}
	stopOnce sync.Once
}

type practiceEntry struct {
	record   *model.ResultRecord
	storedAt time.Time
}

// NewPracticeResultStore creates the store and starts its janitor.
func NewPracticeResultStore(ttl time.Duration) *PracticeResultStore {
	s := &PracticeResultStore{
		ttl:     ttl,
		results: make(map[string]practiceEntry),
		stop:    make(chan struct{}),
	}

	// Reap expired entries every minute until Close.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.cleanup()
			}
		}
	}()

	return s
}

// Close stops the janitor goroutine. Safe to call more than once.
func (s *PracticeResultStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Put stores a practice result under its local key.
func (s *PracticeResultStore) Put(key string, record *model.ResultRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[key] = practiceEntry{record: record, storedAt: time.Now()}
}

// Get returns the practice result for a key, if still present.
func (s *PracticeResultStore) Get(key string) (*model.ResultRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.results[key]
	if !ok {
		return nil, false
	}
	return entry.record, true
}

func (s *PracticeResultStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.results {
		if time.Since(entry.storedAt) > s.ttl {
			delete(s.results, key)
		}
	}
}
