package repository

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mnemo/pkg/model"
)

// Memory is an in-process Repository used by tests and the local console.
// Documents are deep-copied on the way in and out so callers cannot alias
// stored state.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]*model.UserMemory
}

// NewMemory creates a new in-memory repository
func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string]*model.UserMemory),
	}
}

func (r *Memory) GetMemory(ctx context.Context, userID string) (*model.UserMemory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[userID]
	if !ok {
		return nil, goerr.Wrap(ErrMemoryNotFound, "", goerr.V("user_id", userID))
	}

	return copyMemory(doc)
}

func (r *Memory) PutMemory(ctx context.Context, memory *model.UserMemory) error {
	if memory.UserID == "" {
		return goerr.New("user ID is required")
	}

	memory.UpdatedAt = time.Now()
	stored, err := copyMemory(memory)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[memory.UserID] = stored

	return nil
}

func (r *Memory) ListUserIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.docs))
	for id := range r.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids, nil
}

func copyMemory(src *model.UserMemory) (*model.UserMemory, error) {
	data, err := json.Marshal(src)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to copy memory document")
	}

	var dst model.UserMemory
	if err := json.Unmarshal(data, &dst); err != nil {
		return nil, goerr.Wrap(err, "failed to copy memory document")
	}
	if dst.Facts == nil {
		dst.Facts = []*model.MemoryFact{}
	}

	return &dst, nil
}
