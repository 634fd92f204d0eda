package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagCache_CleanByIdentity(t *testing.T) {
	c := NewTagCache()
	c.Set("salable:SKU-1:1", []byte("a"), []string{"cat_p", "cat_p_10"}, 0)
	c.Set("salable:SKU-2:1", []byte("b"), []string{"cat_p", "cat_p_20"}, 0)

	require.NoError(t, c.Clean(context.Background(), []string{"cat_p_10"}))

	_, ok := c.Get("salable:SKU-1:1")
	assert.False(t, ok)
	v, ok := c.Get("salable:SKU-2:1")
	assert.True(t, ok)
	assert.Equal(t, []byte("b"), v)
}

func TestTagCache_CleanByBareTag(t *testing.T) {
	c := NewTagCache()
	c.Set("k1", []byte("a"), []string{"cat_p", "cat_p_10"}, 0)
	c.Set("k2", []byte("b"), []string{"cat_p", "cat_p_20"}, 0)
	c.Set("k3", []byte("c"), []string{"cat_c_3"}, 0)

	require.NoError(t, c.Clean(context.Background(), []string{"cat_p"}))

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("k3")
	assert.True(t, ok)
}

func TestTagCache_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTagCache()
	c.now = func() time.Time { return now }

	c.Set("k", []byte("v"), nil, time.Minute)
	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTagCache_SetReplacesTags(t *testing.T) {
	c := NewTagCache()
	c.Set("k", []byte("v1"), []string{"cat_p_1"}, 0)
	c.Set("k", []byte("v2"), []string{"cat_p_2"}, 0)

	require.NoError(t, c.Clean(context.Background(), []string{"cat_p_1"}))
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), v)
}

func TestTagCache_ExpiredReadKeepsEntryStoredMeanwhile(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTagCache()
	c.now = func() time.Time { return now }
	c.Set("k", []byte("stale"), []string{"cat_p_1"}, time.Minute)
	now = now.Add(2 * time.Minute)

	// The first clock read happens between the read and write locks of Get;
	// a concurrent writer stores a fresh value right there.
	refreshed := false
	c.now = func() time.Time {
		if !refreshed {
			refreshed = true
			c.Set("k", []byte("fresh"), []string{"cat_p_1"}, time.Hour)
		}
		return now
	}

	_, ok := c.Get("k")
	assert.False(t, ok)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("fresh"), v)
	assert.Equal(t, 1, c.Len())
}
