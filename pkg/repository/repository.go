package repository

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mnemo/pkg/model"
)

var ErrMemoryNotFound = goerr.New("user memory not found")

// Repository persists one UserMemory document per user. GetMemory returns
// ErrMemoryNotFound when no document exists; callers that want lazy
// initialization handle that case themselves.
type Repository interface {
	// GetMemory retrieves the memory document of a user
	GetMemory(ctx context.Context, userID string) (*model.UserMemory, error)

	// PutMemory replaces the memory document of a user
	PutMemory(ctx context.Context, memory *model.UserMemory) error

	// ListUserIDs returns the IDs of all users with a memory document
	ListUserIDs(ctx context.Context) ([]string, error)
}
