package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/mnemo/pkg/model"
	"github.com/m-mizutani/mnemo/pkg/repository"
)

func setupFirestore(t *testing.T) *repository.Firestore {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	if projectID == "" || databaseID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID and TEST_FIRESTORE_DATABASE_ID must be set to run Firestore tests")
	}

	repo, err := repository.New(context.Background(), projectID, databaseID)
	gt.NoError(t, err)
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})

	return repo
}

func TestFirestorePutGetMemory(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()

	userID := "test-" + string(model.NewFactID())
	lang := model.LangChinese

	mem := model.NewUserMemory(userID)
	mem.LanguagePreference = &lang
	mem.Facts = append(mem.Facts, &model.MemoryFact{
		ID:         model.NewFactID(),
		Content:    "Test fact for firestore roundtrip",
		Category:   model.CategoryTechnical,
		Tier:       model.TierImportant,
		Confidence: 0.75,
		CreatedAt:  time.Now(),
	})
	mem.RecalcStats()

	gt.NoError(t, repo.PutMemory(ctx, mem))

	got, err := repo.GetMemory(ctx, mem.UserID)
	gt.NoError(t, err)
	gt.A(t, got.Facts).Length(1)
	gt.Equal(t, got.Facts[0].Content, mem.Facts[0].Content)
	gt.NotNil(t, got.LanguagePreference)
	gt.Equal(t, *got.LanguagePreference, model.LangChinese)
}

func TestFirestoreGetMemoryNotFound(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()

	_, err := repo.GetMemory(ctx, "no-such-user-"+string(model.NewFactID()))
	gt.Error(t, err)
	gt.True(t, errors.Is(err, repository.ErrMemoryNotFound))
}
