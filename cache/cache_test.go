package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-engine/cache"
	"github.com/warp/loan-engine/calendar"
)

// Compile-time checks that both caches back the holiday calendar.
var (
	_ calendar.Cache = (*cache.Memory)(nil)
	_ calendar.Cache = (*cache.Redis)(nil)
)

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := cache.NewMemory()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "v"))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := cache.NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%10)
			_ = m.Set(ctx, key, "v")
			_, _, _ = m.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, m.Len())
}

func TestRedis_UnreachableServerReturnsError(t *testing.T) {
	// Nothing listens on port 1; the calendar treats this as a cache miss.
	r := cache.NewRedis("127.0.0.1:1", time.Hour)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, ok, err := r.Get(ctx, "holidays:co:2024")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, r.Set(ctx, "holidays:co:2024", "[]"))
}
