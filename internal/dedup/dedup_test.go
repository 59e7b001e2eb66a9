package dedup

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_FirstDelivery(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	assert.True(t, store.FirstDelivery(ctx, "mp:1:approved"))
	assert.False(t, store.FirstDelivery(ctx, "mp:1:approved"))

	// A different status for the same payment is a distinct event.
	assert.True(t, store.FirstDelivery(ctx, "mp:1:rejected"))
}

func TestMemoryStore_ForgetAllowsRedelivery(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	assert.True(t, store.FirstDelivery(ctx, "mp:1:approved"))
	store.Forget(ctx, "mp:1:approved")
	assert.True(t, store.FirstDelivery(ctx, "mp:1:approved"))

	// Forgetting an unknown key is a no-op.
	store.Forget(ctx, "mp:2:approved")
	assert.True(t, store.FirstDelivery(ctx, "mp:2:approved"))
}

func TestMemoryStore_ExpiredKeysAreForgotten(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{
		seen: make(map[string]time.Time),
		ttl:  time.Millisecond,
	}

	assert.True(t, store.FirstDelivery(ctx, "mp:1:approved"))
	time.Sleep(5 * time.Millisecond)
	assert.True(t, store.FirstDelivery(ctx, "mp:1:approved"))
}

func TestMemoryStore_SweepRemovesExpired(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{
		seen: make(map[string]time.Time),
		ttl:  time.Millisecond,
	}

	for i := 0; i < 100; i++ {
		store.FirstDelivery(ctx, fmt.Sprintf("mp:%d:approved", i))
	}
	time.Sleep(5 * time.Millisecond)

	store.FirstDelivery(ctx, "fresh")

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.seen, 1)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	const workers = 32
	firsts := make(chan bool, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			firsts <- store.FirstDelivery(ctx, "mp:contested:approved")
		}()
	}
	wg.Wait()
	close(firsts)

	count := 0
	for first := range firsts {
		if first {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
