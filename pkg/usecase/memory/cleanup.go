package memory

import (
	"context"
	"time"

	"github.com/m-mizutani/mnemo/pkg/model"
	"github.com/m-mizutani/mnemo/pkg/utils/logging"
)

// CleanupResult counts what one eviction pass did.
type CleanupResult struct {
	Expired    int
	Capped     int
	Trimmed    int
	Kept       int
	TokenUsage int
}

// Cleanup runs the eviction pipeline against a user's stored memory:
// expiry removal, per-tier capping, then token-budget trimming. It is
// idempotent and best-effort: any failure is logged and leaves the stored
// document untouched, so it can never fail a user-facing request. Returns
// nil when the pass was skipped due to an error.
func (s *Service) Cleanup(ctx context.Context, userID string) *CleanupResult {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	result, err := s.cleanupLocked(ctx, userID)
	if err != nil {
		logging.From(ctx).Warn("memory cleanup failed, leaving memory untouched",
			"error", err, "user_id", userID)
		return nil
	}

	s.emitStats(ctx, "cleanup", userID, result, 0)
	return result
}

func (s *Service) cleanupLocked(ctx context.Context, userID string) (*CleanupResult, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	kept, result := s.evict(ctx, current.Facts, now)

	mem := &model.UserMemory{
		UserID:             userID,
		Facts:              kept,
		LanguagePreference: current.LanguagePreference,
		Stats:              current.Stats,
	}
	mem.RecalcStats()
	mem.Stats.LastCleanup = now

	if err := s.repo.PutMemory(ctx, mem); err != nil {
		return nil, err
	}

	return result, nil
}

// evict applies the three retention phases in order. Survivors keep their
// original relative order.
func (s *Service) evict(ctx context.Context, facts []*model.MemoryFact, now time.Time) ([]*model.MemoryFact, *CleanupResult) {
	result := &CleanupResult{}

	kept := removeExpired(facts, now)
	result.Expired = len(facts) - len(kept)

	afterCap := s.capTiers(ctx, kept, now)
	result.Capped = len(kept) - len(afterCap)

	afterTrim := s.trimToBudget(afterCap, now)
	result.Trimmed = len(afterCap) - len(afterTrim)

	result.Kept = len(afterTrim)
	for _, f := range afterTrim {
		result.TokenUsage += f.TokenEstimate()
	}

	return afterTrim, result
}

// removeExpired drops facts whose expiry is in the past. Facts without an
// expiry, which includes every core fact, always survive this phase.
func removeExpired(facts []*model.MemoryFact, now time.Time) []*model.MemoryFact {
	kept := make([]*model.MemoryFact, 0, len(facts))
	for _, f := range facts {
		if !f.Expired(now) {
			kept = append(kept, f)
		}
	}
	return kept
}

// capTiers keeps only the top max_facts facts per tier by importance.
// Facts with an unrecognized tier are treated as context tier with a
// warning; they are never rejected outright.
func (s *Service) capTiers(ctx context.Context, facts []*model.MemoryFact, now time.Time) []*model.MemoryFact {
	byTier := make(map[model.Tier][]*model.MemoryFact)
	for _, f := range facts {
		tier := f.Tier
		if err := tier.Validate(); err != nil {
			logging.From(ctx).Warn("fact has unrecognized tier, treating as context",
				"fact_id", f.ID, "tier", f.Tier)
			tier = model.TierContext
		}
		byTier[tier] = append(byTier[tier], f)
	}

	keep := make(map[*model.MemoryFact]bool, len(facts))
	for tier, tierFacts := range byTier {
		limit := s.policy.Limit(tier)
		survivors := tierFacts
		if len(survivors) > limit.MaxFacts {
			survivors = SortByImportance(survivors, now)[:limit.MaxFacts]
		}
		for _, f := range survivors {
			keep[f] = true
		}
	}

	kept := make([]*model.MemoryFact, 0, len(keep))
	for _, f := range facts {
		if keep[f] {
			kept = append(kept, f)
		}
	}
	return kept
}

// trimToBudget greedily keeps the most important facts while the running
// token total stays within the global budget. Core facts are always kept
// and count toward the total, so a large core fact can push the final
// total past the nominal budget. That override is intentional.
func (s *Service) trimToBudget(facts []*model.MemoryFact, now time.Time) []*model.MemoryFact {
	total := 0
	for _, f := range facts {
		total += f.TokenEstimate()
	}
	if total <= s.policy.MaxTotalTokens {
		return facts
	}

	keep := make(map[*model.MemoryFact]bool, len(facts))
	running := 0
	for _, f := range SortByImportance(facts, now) {
		tokens := f.TokenEstimate()
		if f.Tier == model.TierCore {
			keep[f] = true
			running += tokens
			continue
		}
		if running+tokens <= s.policy.MaxTotalTokens {
			keep[f] = true
			running += tokens
		}
	}

	kept := make([]*model.MemoryFact, 0, len(keep))
	for _, f := range facts {
		if keep[f] {
			kept = append(kept, f)
		}
	}
	return kept
}
