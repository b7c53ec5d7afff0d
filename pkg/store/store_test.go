package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStoreBasics(t *testing.T) {
	s := New[int64, string]()

	_, ok := s.Get(1)
	assert.False(t, ok)

	s.Set(1, "a")
	s.Set(1, "b")
	v, ok := s.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "b", v)
	assert.Equal(t, 1, s.Len())

	s.Delete(1)
	s.Delete(1)
	assert.Equal(t, 0, s.Len())
}

func TestStoreTake(t *testing.T) {
	s := New[string, int]()
	s.Set("k", 7)

	v, ok := s.Take("k")
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	_, ok = s.Take("k")
	assert.False(t, ok)
}

func TestStoreSetIfAbsentIsExclusive(t *testing.T) {
	s := New[string, struct{}]()

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.SetIfAbsent("user", struct{}{}) {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestStoreTTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New[string, int](
		WithPolicy(TTL(time.Minute)),
		WithClock(func() time.Time { return now }),
	)

	s.Set("a", 1)
	now = now.Add(30 * time.Second)
	s.Set("b", 2)
	_, ok := s.Get("a")
	assert.True(t, ok)

	now = now.Add(45 * time.Second)
	_, ok = s.Get("a")
	assert.False(t, ok, "a is older than the TTL")
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.SetIfAbsent("a", 3), "expired keys can be claimed again")

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, s.Sweep())
	assert.Equal(t, 0, s.Len())
}
