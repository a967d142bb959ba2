package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/mnemo/pkg/model"
	"github.com/m-mizutani/mnemo/pkg/repository"
)

func TestMemoryRepositoryNotFound(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	_, err := repo.GetMemory(ctx, "nobody")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, repository.ErrMemoryNotFound))
}

func TestMemoryRepositoryPutGet(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	mem := model.NewUserMemory("user-1")
	mem.Facts = append(mem.Facts, &model.MemoryFact{
		ID:         model.NewFactID(),
		Content:    "Prefers dark mode",
		Category:   model.CategoryPreference,
		Tier:       model.TierImportant,
		Confidence: 0.8,
	})
	mem.RecalcStats()

	gt.NoError(t, repo.PutMemory(ctx, mem))

	got, err := repo.GetMemory(ctx, "user-1")
	gt.NoError(t, err)
	gt.A(t, got.Facts).Length(1)
	gt.Equal(t, got.Facts[0].Content, "Prefers dark mode")
	gt.Equal(t, got.Stats.TotalFacts, 1)
}

func TestMemoryRepositoryCopiesDocuments(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	mem := model.NewUserMemory("user-1")
	mem.Facts = append(mem.Facts, &model.MemoryFact{
		ID:      model.FactID("f1"),
		Content: "original",
	})
	gt.NoError(t, repo.PutMemory(ctx, mem))

	// Mutating the caller's copy must not leak into the stored document
	mem.Facts[0].Content = "mutated"

	got, err := repo.GetMemory(ctx, "user-1")
	gt.NoError(t, err)
	gt.Equal(t, got.Facts[0].Content, "original")
}

func TestMemoryRepositoryListUserIDs(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	for _, id := range []string{"beta", "alpha"} {
		gt.NoError(t, repo.PutMemory(ctx, model.NewUserMemory(id)))
	}

	ids, err := repo.ListUserIDs(ctx)
	gt.NoError(t, err)
	gt.Equal(t, ids, []string{"alpha", "beta"})
}
