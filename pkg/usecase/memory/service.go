package memory

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mnemo/pkg/adapter"
	"github.com/m-mizutani/mnemo/pkg/model"
	"github.com/m-mizutani/mnemo/pkg/repository"
	"github.com/m-mizutani/mnemo/pkg/utils/logging"
)

const lockStripes = 64

// Service owns all read-modify-write cycles against per-user memory
// documents. Writes for the same user are serialized through a striped
// in-process mutex; the repository itself stays a plain Get/Put store.
type Service struct {
	repo      repository.Repository
	policy    *Policy
	telemetry adapter.Telemetry

	locks [lockStripes]sync.Mutex
}

type Option func(*Service)

// WithPolicy overrides the default retention policy
func WithPolicy(policy *Policy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

// WithTelemetry attaches a maintenance-stats sink. Sink failures are
// logged and never surface to callers.
func WithTelemetry(t adapter.Telemetry) Option {
	return func(s *Service) {
		s.telemetry = t
	}
}

// New creates a memory service on top of the given repository
func New(repo repository.Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		policy: DefaultPolicy(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Policy returns the active retention policy
func (s *Service) Policy() *Policy {
	return s.policy
}

func (s *Service) userLock(userID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return &s.locks[h.Sum32()%lockStripes]
}

// Get returns the user's memory, or a fresh empty aggregate when none is
// stored yet.
func (s *Service) Get(ctx context.Context, userID string) (*model.UserMemory, error) {
	mem, err := s.repo.GetMemory(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrMemoryNotFound) {
			return model.NewUserMemory(userID), nil
		}
		return nil, goerr.Wrap(err, "failed to load user memory", goerr.V("user_id", userID))
	}
	return mem, nil
}

// Save replaces the user's fact set and recomputes stats. A nil language
// preference keeps whatever is stored; it does not clear the preference.
func (s *Service) Save(ctx context.Context, userID string, facts []*model.MemoryFact, lang *model.LanguagePreference) error {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	return s.saveLocked(ctx, userID, facts, lang)
}

func (s *Service) saveLocked(ctx context.Context, userID string, facts []*model.MemoryFact, lang *model.LanguagePreference) error {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	if lang == nil {
		lang = current.LanguagePreference
	}

	mem := &model.UserMemory{
		UserID:             userID,
		Facts:              facts,
		LanguagePreference: lang,
		Stats:              current.Stats,
	}
	mem.RecalcStats()

	if err := s.repo.PutMemory(ctx, mem); err != nil {
		return goerr.Wrap(err, "failed to save user memory", goerr.V("user_id", userID))
	}

	return nil
}

// AddFacts filters candidates through validation and deduplication, then
// appends the survivors and runs the eviction pipeline in the same write.
// When every candidate is a duplicate and no language preference is
// given, nothing is written at all. A given language preference is
// persisted even when zero facts survive.
func (s *Service) AddFacts(ctx context.Context, userID string, candidates []model.FactInput, lang *model.LanguagePreference) error {
	if len(candidates) == 0 && lang == nil {
		return nil
	}

	logger := logging.From(ctx)

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	facts := current.Facts
	dropped := 0

	for _, in := range candidates {
		if err := in.Validate(); err != nil {
			logger.Warn("dropping malformed candidate fact", "error", err, "user_id", userID)
			dropped++
			continue
		}
		if IsDuplicate(facts, in.Content) {
			logger.Debug("dropping duplicate candidate fact", "user_id", userID, "content", in.Content)
			dropped++
			continue
		}

		facts = append(facts, &model.MemoryFact{
			ID:            model.NewFactID(),
			Content:       in.Content,
			Category:      in.Category,
			Tier:          in.Tier,
			Confidence:    in.Confidence,
			CreatedAt:     now,
			LastUsedAt:    now,
			ExpiresAt:     s.policy.ExpiresAt(in.Tier, now),
			AutoExtracted: true,
		})
	}

	accepted := len(facts) - len(current.Facts)
	if accepted == 0 && lang == nil {
		logger.Debug("all candidates dropped, skipping write",
			"user_id", userID, "dropped", dropped)
		return nil
	}

	// Every write goes through the eviction pipeline so the stored
	// document always satisfies the retention policy.
	kept, result := s.evict(ctx, facts, now)

	if err := s.saveLocked(ctx, userID, kept, lang); err != nil {
		return err
	}

	logger.Info("added facts to memory",
		"user_id", userID, "accepted", accepted, "dropped", dropped)
	s.emitStats(ctx, "add_facts", userID, result, dropped)

	return nil
}

// MarkUsed increments the use count and refreshes the last-used time of
// the named facts only.
func (s *Service) MarkUsed(ctx context.Context, userID string, ids []model.FactID) error {
	if len(ids) == 0 {
		return nil
	}

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if len(current.Facts) == 0 {
		return nil
	}

	wanted := make(map[model.FactID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	now := time.Now()
	touched := false
	for _, fact := range current.Facts {
		if wanted[fact.ID] {
			fact.UseCount++
			fact.LastUsedAt = now
			touched = true
		}
	}
	if !touched {
		return nil
	}

	if err := s.repo.PutMemory(ctx, current); err != nil {
		return goerr.Wrap(err, "failed to mark facts as used", goerr.V("user_id", userID))
	}

	return nil
}

// Delete removes a single fact
func (s *Service) Delete(ctx context.Context, userID string, id model.FactID) error {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	remaining := make([]*model.MemoryFact, 0, len(current.Facts))
	for _, fact := range current.Facts {
		if fact.ID != id {
			remaining = append(remaining, fact)
		}
	}
	if len(remaining) == len(current.Facts) {
		return nil
	}

	return s.saveLocked(ctx, userID, remaining, nil)
}

// Clear resets the user's memory to an empty aggregate
func (s *Service) Clear(ctx context.Context, userID string) error {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	mem := model.NewUserMemory(userID)
	mem.RecalcStats()

	if err := s.repo.PutMemory(ctx, mem); err != nil {
		return goerr.Wrap(err, "failed to clear user memory", goerr.V("user_id", userID))
	}

	return nil
}

func (s *Service) emitStats(ctx context.Context, operation, userID string, result *CleanupResult, dropped int) {
	if s.telemetry == nil || result == nil {
		return
	}

	stats := &adapter.MaintenanceStats{
		UserID:            userID,
		Operation:         operation,
		Expired:           result.Expired,
		Capped:            result.Capped,
		Trimmed:           result.Trimmed,
		Kept:              result.Kept,
		DroppedDuplicates: dropped,
		TokenUsage:        result.TokenUsage,
		Timestamp:         time.Now(),
	}

	if err := s.telemetry.InsertStats(ctx, stats); err != nil {
		logging.From(ctx).Warn("failed to emit maintenance stats", "error", err, "user_id", userID)
	}
}
