package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const defaultKeySetTTL = 5 * time.Minute
const defaultKeySetMaxEntries = 8192

// MemoryKeySet is the in-process ExpiringKeySet. Expiry is a lazily-checked
// deadline per key plus pruning on access; there is no per-key timer, so
// large key volumes cost one map entry each and nothing more. State lives
// for the process lifetime only.
type MemoryKeySet struct {
	mu         sync.Mutex
	defaultTTL time.Duration
	maxEntries int
	deadlines  map[string]time.Time
	Now        func() time.Time
}

func NewMemoryKeySet(defaultTTL time.Duration) *MemoryKeySet {
	return NewMemoryKeySetWithLimits(defaultTTL, defaultKeySetMaxEntries)
}

func NewMemoryKeySetWithLimits(defaultTTL time.Duration, maxEntries int) *MemoryKeySet {
	if defaultTTL <= 0 {
		defaultTTL = defaultKeySetTTL
	}
	if maxEntries <= 0 {
		maxEntries = defaultKeySetMaxEntries
	}
	return &MemoryKeySet{
		defaultTTL: defaultTTL,
		maxEntries: maxEntries,
		deadlines:  map[string]time.Time{},
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (s *MemoryKeySet) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	key, ttl, err := s.normalize(key, ttl)
	if err != nil {
		return false, err
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	if deadline, ok := s.deadlines[key]; ok && now.Before(deadline) {
		return false, nil
	}
	s.makeRoomLocked(1)
	s.deadlines[key] = now.Add(ttl)
	return true, nil
}

func (s *MemoryKeySet) Contains(_ context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if s == nil {
		return false, fmt.Errorf("core: key set is not configured")
	}
	if key == "" {
		return false, fmt.Errorf("core: key is required")
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	deadline, ok := s.deadlines[key]
	if !ok {
		return false, nil
	}
	if !now.Before(deadline) {
		delete(s.deadlines, key)
		return false, nil
	}
	return true, nil
}

func (s *MemoryKeySet) Remember(_ context.Context, key string, ttl time.Duration) error {
	key, ttl, err := s.normalize(key, ttl)
	if err != nil {
		return err
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	if _, exists := s.deadlines[key]; !exists {
		s.makeRoomLocked(1)
	}
	s.deadlines[key] = now.Add(ttl)
	return nil
}

// Len reports the number of live keys after pruning expired entries.
func (s *MemoryKeySet) Len(_ context.Context) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("core: key set is not configured")
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	return len(s.deadlines), nil
}

func (s *MemoryKeySet) PurgeExpired(_ context.Context) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("core: key set is not configured")
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.deadlines)
	s.pruneLocked(now)
	return before - len(s.deadlines), nil
}

func (s *MemoryKeySet) normalize(key string, ttl time.Duration) (string, time.Duration, error) {
	if s == nil {
		return "", 0, fmt.Errorf("core: key set is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", 0, fmt.Errorf("core: key is required")
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	return key, ttl, nil
}

func (s *MemoryKeySet) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *MemoryKeySet) pruneLocked(now time.Time) {
	for key, deadline := range s.deadlines {
		if !now.Before(deadline) {
			delete(s.deadlines, key)
		}
	}
}

// makeRoomLocked evicts nearest-to-expiry entries until the incoming insert
// fits under the capacity bound.
func (s *MemoryKeySet) makeRoomLocked(incoming int) {
	if s.maxEntries <= 0 {
		return
	}
	target := s.maxEntries - incoming
	if target < 0 {
		target = 0
	}
	for len(s.deadlines) > target {
		var soonestKey string
		var soonest time.Time
		for key, deadline := range s.deadlines {
			if soonestKey == "" || deadline.Before(soonest) {
				soonestKey = key
				soonest = deadline
			}
		}
		if soonestKey == "" {
			return
		}
		delete(s.deadlines, soonestKey)
	}
}

var (
	_ ExpiringKeySet = (*MemoryKeySet)(nil)
	_ KeySetSizer    = (*MemoryKeySet)(nil)
)
