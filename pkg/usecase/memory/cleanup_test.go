package memory_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/mnemo/pkg/model"
	"github.com/m-mizutani/mnemo/pkg/repository"
	"github.com/m-mizutani/mnemo/pkg/usecase/memory"
)

func TestCleanupExpiry(t *testing.T) {
	repo := repository.NewMemory()
	svc := memory.New(repo)
	ctx := context.Background()

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	mem := model.NewUserMemory("user-1")
	mem.Facts = []*model.MemoryFact{
		{ID: "expired", Content: "old context", Category: model.CategoryProject, Tier: model.TierContext, CreatedAt: now.Add(-31 * 24 * time.Hour), ExpiresAt: &past},
		{ID: "alive", Content: "recent context", Category: model.CategoryProject, Tier: model.TierContext, CreatedAt: now, ExpiresAt: &future},
		{ID: "core", Content: "core fact", Category: model.CategoryProfile, Tier: model.TierCore, CreatedAt: now},
	}
	gt.NoError(t, repo.PutMemory(ctx, mem))

	result := svc.Cleanup(ctx, "user-1")
	gt.NotNil(t, result)
	gt.Equal(t, result.Expired, 1)

	got, err := svc.Get(ctx, "user-1")
	gt.NoError(t, err)
	gt.A(t, got.Facts).Length(2)
	gt.Nil(t, got.FindFact("expired"))
	gt.NotNil(t, got.FindFact("alive"))
	gt.NotNil(t, got.FindFact("core"))
}

func TestCleanupTierCapping(t *testing.T) {
	repo := repository.NewMemory()
	svc := memory.New(repo)
	ctx := context.Background()

	now := time.Now()
	mem := model.NewUserMemory("user-1")
	for i := 0; i < 60; i++ {
		mem.Facts = append(mem.Facts, &model.MemoryFact{
			ID:         model.FactID(fmt.Sprintf("fact-%02d", i)),
			Content:    fmt.Sprintf("imp %02d", i),
			Category:   model.CategoryTechnical,
			Tier:       model.TierImportant,
			Confidence: float64(i) / 60,
			CreatedAt:  now,
		})
	}
	gt.NoError(t, repo.PutMemory(ctx, mem))

	result := svc.Cleanup(ctx, "user-1")
	gt.NotNil(t, result)
	gt.Equal(t, result.Capped, 48)

	got, err := svc.Get(ctx, "user-1")
	gt.NoError(t, err)
	gt.A(t, got.Facts).Length(12)

	// The 12 survivors must be the highest-confidence facts
	for _, f := range got.Facts {
		gt.Number(t, f.Confidence).GreaterOrEqual(float64(48) / 60)
	}
}

func TestCleanupCoreBudgetOverride(t *testing.T) {
	repo := repository.NewMemory()
	svc := memory.New(repo)
	ctx := context.Background()

	now := time.Now()
	mem := model.NewUserMemory("user-1")
	mem.Facts = []*model.MemoryFact{
		{
			ID:         "huge-core",
			Content:    strings.Repeat("x", 20000), // ~5,000 tokens against a 500 token budget
			Category:   model.CategoryProfile,
			Tier:       model.TierCore,
			Confidence: 0.9,
			CreatedAt:  now,
		},
		{
			ID:         "small-context",
			Content:    "short lived note",
			Category:   model.CategoryProject,
			Tier:       model.TierContext,
			Confidence: 0.9,
			CreatedAt:  now,
		},
	}
	gt.NoError(t, repo.PutMemory(ctx, mem))

	result := svc.Cleanup(ctx, "user-1")
	gt.NotNil(t, result)

	got, err := svc.Get(ctx, "user-1")
	gt.NoError(t, err)

	// The core fact survives even though it alone blows the budget; the
	// non-core fact is trimmed because the running total is already over.
	gt.NotNil(t, got.FindFact("huge-core"))
	gt.Nil(t, got.FindFact("small-context"))
	gt.Equal(t, result.Trimmed, 1)
}

func TestCleanupCoreExpiryInvariant(t *testing.T) {
	repo := repository.NewMemory()
	svc := memory.New(repo)
	ctx := context.Background()

	gt.NoError(t, svc.AddFacts(ctx, "user-1", []model.FactInput{
		{Content: "Lives in Kyoto", Category: model.CategoryProfile, Tier: model.TierCore, Confidence: 0.9},
		{Content: "Currently migrating a service to Go", Category: model.CategoryProject, Tier: model.TierImportant, Confidence: 0.8},
	}, nil))

	check := func() {
		got, err := svc.Get(ctx, "user-1")
		gt.NoError(t, err)
		for _, f := range got.Facts {
			if f.Tier == model.TierCore {
				gt.Nil(t, f.ExpiresAt)
			} else {
				gt.NotNil(t, f.ExpiresAt)
			}
		}
	}

	check()
	gt.NotNil(t, svc.Cleanup(ctx, "user-1"))
	check()
}

func TestCleanupUnknownTierCoercion(t *testing.T) {
	repo := repository.NewMemory()
	svc := memory.New(repo)
	ctx := context.Background()

	now := time.Now()
	mem := model.NewUserMemory("user-1")
	// 7 facts with a bogus tier: coerced to context (cap 6), never crashed on
	for i := 0; i < 7; i++ {
		mem.Facts = append(mem.Facts, &model.MemoryFact{
			ID:         model.FactID(fmt.Sprintf("weird-%d", i)),
			Content:    fmt.Sprintf("note %d", i),
			Category:   model.CategoryProject,
			Tier:       model.Tier("legacy"),
			Confidence: float64(i) / 10,
			CreatedAt:  now,
		})
	}
	gt.NoError(t, repo.PutMemory(ctx, mem))

	result := svc.Cleanup(ctx, "user-1")
	gt.NotNil(t, result)

	got, err := svc.Get(ctx, "user-1")
	gt.NoError(t, err)
	gt.A(t, got.Facts).Length(6)
}

func TestCleanupPreservesLanguagePreference(t *testing.T) {
	repo := repository.NewMemory()
	svc := memory.New(repo)
	ctx := context.Background()

	lang := model.LangHybrid
	mem := model.NewUserMemory("user-1")
	mem.LanguagePreference = &lang
	gt.NoError(t, repo.PutMemory(ctx, mem))

	gt.NotNil(t, svc.Cleanup(ctx, "user-1"))

	got, err := svc.Get(ctx, "user-1")
	gt.NoError(t, err)
	gt.NotNil(t, got.LanguagePreference)
	gt.Equal(t, *got.LanguagePreference, model.LangHybrid)
}

func TestCleanupIsIdempotent(t *testing.T) {
	repo := repository.NewMemory()
	svc := memory.New(repo)
	ctx := context.Background()

	gt.NoError(t, svc.AddFacts(ctx, "user-1", []model.FactInput{
		{Content: "Uses Linux on every machine", Category: model.CategoryTechnical, Tier: model.TierImportant, Confidence: 0.8},
	}, nil))

	first := svc.Cleanup(ctx, "user-1")
	second := svc.Cleanup(ctx, "user-1")
	gt.NotNil(t, first)
	gt.NotNil(t, second)
	gt.Equal(t, first.Kept, second.Kept)

	got, err := svc.Get(ctx, "user-1")
	gt.NoError(t, err)
	gt.A(t, got.Facts).Length(1)
}

// failingRepo simulates a broken persistence layer.
type failingRepo struct{}

func (r *failingRepo) GetMemory(ctx context.Context, userID string) (*model.UserMemory, error) {
	return nil, goerr.New("store unavailable")
}

func (r *failingRepo) PutMemory(ctx context.Context, memory *model.UserMemory) error {
	return goerr.New("store unavailable")
}

func (r *failingRepo) ListUserIDs(ctx context.Context) ([]string, error) {
	return nil, goerr.New("store unavailable")
}

func TestCleanupSwallowsRepositoryFailure(t *testing.T) {
	svc := memory.New(&failingRepo{})

	// Must not panic and must not surface the error
	result := svc.Cleanup(context.Background(), "user-1")
	gt.Nil(t, result)
}
