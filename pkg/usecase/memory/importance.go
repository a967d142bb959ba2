package memory

import (
	"sort"
	"time"

	"github.com/m-mizutani/mnemo/pkg/model"
)

const (
	confidenceWeight = 40.0
	recencyWeight    = 30.0
	recencyDecayDays = 3.0 // full recency weight decays to zero over 90 days
	usagePointPerUse = 3.0
	usageCap         = 30.0
)

// Score assigns a scalar importance to a fact in roughly [0, 100]:
// 40% confidence, ~30% recency decaying over 90 days, ~30% usage
// saturating at 10 uses. Monotonic non-decreasing in all three inputs.
func Score(fact *model.MemoryFact, now time.Time) float64 {
	score := fact.Confidence * confidenceWeight

	days := now.Sub(fact.CreatedAt).Hours() / 24
	if recency := recencyWeight - days/recencyDecayDays; recency > 0 {
		score += recency
	}

	usage := float64(fact.UseCount) * usagePointPerUse
	if usage > usageCap {
		usage = usageCap
	}
	score += usage

	return score
}

// SortByImportance returns a new slice sorted by descending importance.
// The input is not mutated and ties keep their original relative order.
func SortByImportance(facts []*model.MemoryFact, now time.Time) []*model.MemoryFact {
	sorted := make([]*model.MemoryFact, len(facts))
	copy(sorted, facts)

	sort.SliceStable(sorted, func(i, j int) bool {
		return Score(sorted[i], now) > Score(sorted[j], now)
	})

	return sorted
}
