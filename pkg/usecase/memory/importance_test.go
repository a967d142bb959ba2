package memory_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/mnemo/pkg/model"
	"github.com/m-mizutani/mnemo/pkg/usecase/memory"
)

func TestScore(t *testing.T) {
	now := time.Now()

	t.Run("fresh confident fact scores near the maximum", func(t *testing.T) {
		fact := &model.MemoryFact{Confidence: 1.0, CreatedAt: now, UseCount: 10}
		score := memory.Score(fact, now)
		gt.Number(t, score).Greater(99.0)
	})

	t.Run("recency decays to zero after 90 days", func(t *testing.T) {
		fresh := &model.MemoryFact{Confidence: 0.5, CreatedAt: now}
		old := &model.MemoryFact{Confidence: 0.5, CreatedAt: now.Add(-91 * 24 * time.Hour)}
		ancient := &model.MemoryFact{Confidence: 0.5, CreatedAt: now.Add(-365 * 24 * time.Hour)}

		gt.Number(t, memory.Score(fresh, now)).Greater(memory.Score(old, now))
		gt.Equal(t, memory.Score(old, now), memory.Score(ancient, now))
	})

	t.Run("usage saturates at ten uses", func(t *testing.T) {
		ten := &model.MemoryFact{CreatedAt: now, UseCount: 10}
		hundred := &model.MemoryFact{CreatedAt: now, UseCount: 100}
		gt.Equal(t, memory.Score(ten, now), memory.Score(hundred, now))
	})

	t.Run("monotonic in confidence", func(t *testing.T) {
		low := &model.MemoryFact{Confidence: 0.2, CreatedAt: now}
		high := &model.MemoryFact{Confidence: 0.9, CreatedAt: now}
		gt.Number(t, memory.Score(high, now)).Greater(memory.Score(low, now))
	})
}

func TestSortByImportance(t *testing.T) {
	now := time.Now()

	t.Run("does not mutate the input", func(t *testing.T) {
		facts := []*model.MemoryFact{
			{ID: "low", Confidence: 0.1, CreatedAt: now},
			{ID: "high", Confidence: 0.9, CreatedAt: now},
		}

		sorted := memory.SortByImportance(facts, now)

		gt.Equal(t, facts[0].ID, model.FactID("low"))
		gt.Equal(t, sorted[0].ID, model.FactID("high"))
	})

	t.Run("stable under equal scores", func(t *testing.T) {
		facts := []*model.MemoryFact{
			{ID: "first", Confidence: 0.5, CreatedAt: now},
			{ID: "second", Confidence: 0.5, CreatedAt: now},
			{ID: "third", Confidence: 0.5, CreatedAt: now},
		}

		sorted := memory.SortByImportance(facts, now)

		gt.Equal(t, sorted[0].ID, model.FactID("first"))
		gt.Equal(t, sorted[1].ID, model.FactID("second"))
		gt.Equal(t, sorted[2].ID, model.FactID("third"))
	})
}
