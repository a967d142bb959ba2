package recall_test

import (
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/mnemo/pkg/model"
	"github.com/m-mizutani/mnemo/pkg/service/recall"
)

func TestStorePutGet(t *testing.T) {
	store := recall.New()

	id := store.Put(model.ToolResult{ToolName: "web_search", Success: true})
	gt.True(t, id != "")

	result, ok := store.Get(id)
	gt.True(t, ok)
	gt.Equal(t, result.ToolName, "web_search")

	_, ok = store.Get("no-such-id")
	gt.False(t, ok)
}

func TestStoreTTLExpiry(t *testing.T) {
	store := recall.New(recall.WithTTL(10 * time.Millisecond))

	id := store.Put(model.ToolResult{ToolName: "web_fetch"})
	time.Sleep(20 * time.Millisecond)

	// Expired entries are invisible even before the sweep runs
	_, ok := store.Get(id)
	gt.False(t, ok)
	gt.Equal(t, store.Len(), 1)

	// The sweep actually frees them
	removed := store.SweepExpiredForTest(time.Now())
	gt.Equal(t, removed, 1)
	gt.Equal(t, store.Len(), 0)
}

func TestStoreSweepKeepsLiveEntries(t *testing.T) {
	store := recall.New(recall.WithTTL(time.Hour))

	id := store.Put(model.ToolResult{ToolName: "web_search"})
	removed := store.SweepExpiredForTest(time.Now())
	gt.Equal(t, removed, 0)

	_, ok := store.Get(id)
	gt.True(t, ok)
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := recall.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := store.Put(model.ToolResult{ToolName: "web_search"})
			_, ok := store.Get(id)
			gt.True(t, ok)
		}()
	}
	wg.Wait()

	gt.Equal(t, store.Len(), 50)
}
