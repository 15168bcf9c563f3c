package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetGet(t *testing.T) {
	c := NewCache[string, string]()
	c.Set("k", "v")

	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestGetOrSet(t *testing.T) {
	c := NewCache[string, int]()

	v, loaded := c.GetOrSet("n", 1)
	assert.False(t, loaded)
	assert.Equal(t, 1, v)

	v, loaded = c.GetOrSet("n", 2)
	assert.True(t, loaded)
	assert.Equal(t, 1, v, "existing value wins")
}

func TestExpiry(t *testing.T) {
	c := NewCache[string, string]()
	c.SetWithTTL("k", "v", 10*time.Millisecond)

	_, ok := c.Get("k")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok, "item should have expired")
}

func TestNegativeTTLDeletes(t *testing.T) {
	c := NewCache[string, string]()
	c.Set("k", "v")
	c.SetWithTTL("k", "v2", -time.Second)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestDeleteAndLen(t *testing.T) {
	c := NewCache[string, string]()
	c.Set("a", "1")
	c.Set("b", "2")
	assert.EqualValues(t, 2, c.Len())

	c.Delete("a")
	assert.EqualValues(t, 1, c.Len())

	c.Clean()
	assert.EqualValues(t, 0, c.Len())
}

func TestDefaultTTLOption(t *testing.T) {
	c := NewCache[string, string](WithDefaultTTL[string, string](10 * time.Millisecond))
	c.Set("k", "v")

	time.Sleep(20 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
}
