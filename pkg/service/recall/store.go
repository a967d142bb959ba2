package recall

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/mnemo/pkg/model"
	"github.com/m-mizutani/mnemo/pkg/utils/logging"
)

const (
	defaultTTL           = 30 * time.Minute
	defaultSweepInterval = 5 * time.Minute
)

// Store keeps full tool results so a compressed scratchpad entry can be
// re-expanded later by the recall tool. It is an explicit component
// initialized once at process start, not a package-level singleton:
// multiple requests register and expire entries concurrently, so all
// access goes through the mutex. Expired entries are dropped lazily on
// Get and garbage collected by a periodic sweep.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry

	ttl   time.Duration
	sweep time.Duration
	done  chan struct{}
	once  sync.Once
}

type entry struct {
	result   model.ToolResult
	storedAt time.Time
}

type Option func(*Store)

// WithTTL overrides how long stored results stay retrievable
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithSweepInterval overrides how often expired entries are collected
func WithSweepInterval(interval time.Duration) Option {
	return func(s *Store) {
		s.sweep = interval
	}
}

// New creates a recall store. Call Start to begin the sweep loop and
// Stop on shutdown.
func New(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]entry),
		ttl:     defaultTTL,
		sweep:   defaultSweepInterval,
		done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Put stores a tool result and returns the opaque ID used to recall it.
func (s *Store) Put(result model.ToolResult) string {
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = entry{result: result, storedAt: time.Now()}

	return id
}

// Get returns the stored result for an ID. Expired entries are treated
// as absent even before the sweep collects them.
func (s *Store) Get(id string) (model.ToolResult, bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok || time.Since(e.storedAt) > s.ttl {
		return model.ToolResult{}, false
	}

	return e.result, true
}

// Len returns the number of entries, including not yet swept ones.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Start launches the periodic sweep. It returns immediately; the sweep
// goroutine runs until Stop is called or the context is canceled.
func (s *Store) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.sweep)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case <-ticker.C:
				removed := s.sweepExpired(time.Now())
				if removed > 0 {
					logging.From(ctx).Debug("swept expired recall entries", "removed", removed)
				}
			}
		}
	}()
}

// Stop terminates the sweep loop. Safe to call more than once.
func (s *Store) Stop() {
	s.once.Do(func() {
		close(s.done)
	})
}

func (s *Store) sweepExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if now.Sub(e.storedAt) > s.ttl {
			delete(s.entries, id)
			removed++
		}
	}

	return removed
}

// SweepExpiredForTest exposes sweepExpired for tests
func (s *Store) SweepExpiredForTest(now time.Time) int {
	return s.sweepExpired(now)
}
