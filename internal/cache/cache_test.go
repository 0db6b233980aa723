package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	t.Run("It returns what was written", func(t *testing.T) {
		store := New[string](10*time.Minute, 10, clockwork.NewFakeClock())

		store.Set("key", "value")

		value, ok := store.Get("key")
		require.True(t, ok)
		assert.Equal(t, "value", value)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("It misses unknown keys", func(t *testing.T) {
		store := New[string](10*time.Minute, 10, nil)

		_, ok := store.Get("key")
		assert.False(t, ok)
	})

	t.Run("It expires entries after the ttl measured on the clock", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		store := New[int](10*time.Minute, 10, clock)

		store.Set("key", 1)

		clock.Advance(10*time.Minute - time.Second)
		_, ok := store.Get("key")
		assert.True(t, ok)

		clock.Advance(time.Second)
		_, ok = store.Get("key")
		assert.False(t, ok)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("It does not extend the lifetime on reads", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		store := New[int](time.Minute, 10, clock)

		store.Set("key", 1)
		for i := 0; i < 5; i++ {
			clock.Advance(10 * time.Second)
			_, ok := store.Get("key")
			require.True(t, ok)
		}

		clock.Advance(15 * time.Second)
		_, ok := store.Get("key")
		assert.False(t, ok)
	})

	t.Run("It evicts the oldest entries when the capacity is reached", func(t *testing.T) {
		store := New[int](time.Minute, 3, clockwork.NewFakeClock())

		for i := 0; i < 5; i++ {
			store.Set(fmt.Sprintf("key-%d", i), i)
		}

		assert.Equal(t, 3, store.Len())
		_, ok := store.Get("key-0")
		assert.False(t, ok)
		_, ok = store.Get("key-4")
		assert.True(t, ok)
	})

	t.Run("It clears all entries", func(t *testing.T) {
		store := New[int](time.Minute, 3, clockwork.NewFakeClock())
		store.Set("a", 1)
		store.Set("b", 2)

		store.Clear()

		assert.Equal(t, 0, store.Len())
		_, ok := store.Get("a")
		assert.False(t, ok)
	})
}
