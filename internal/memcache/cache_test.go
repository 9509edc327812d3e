package memcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c := New(time.Minute, 0)

	c.Set("key", "value", 0)
	got, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestCache_GetMissing(t *testing.T) {
	c := New(time.Minute, 0)

	got, ok := c.Get("absent")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCache_Expiry(t *testing.T) {
	c := New(time.Minute, 0)

	c.Set("key", "value", 10*time.Millisecond)
	_, ok := c.Get("key")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	got, ok := c.Get("key")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCache_ZeroTTLUsesDefault(t *testing.T) {
	c := New(10*time.Millisecond, 0)

	c.Set("key", "value", 0)
	_, ok := c.Get("key")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = c.Get("key")
	assert.False(t, ok)
}

func TestCache_Overwrite(t *testing.T) {
	c := New(time.Minute, 0)

	c.Set("key", "first", 0)
	c.Set("key", "second", 0)

	got, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestCache_EvictionAtMaxSize(t *testing.T) {
	c := New(time.Minute, 2)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, 2*time.Minute)
	c.Set("c", 3, 3*time.Minute)

	// "a" expires earliest and is evicted to make room.
	_, ok := c.Get("a")
	assert.False(t, ok)

	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestCache_OverwriteDoesNotEvict(t *testing.T) {
	c := New(time.Minute, 2)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, 2*time.Minute)
	c.Set("a", 10, time.Minute)

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, got)

	_, ok = c.Get("b")
	assert.True(t, ok)
}

func TestCache_Delete(t *testing.T) {
	c := New(time.Minute, 0)

	c.Set("key", "value", 0)
	c.Delete("key")

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestCache_Clear(t *testing.T) {
	c := New(time.Minute, 0)

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Clear()

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}
