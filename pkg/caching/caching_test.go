package caching

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Minute)
	require.NoError(t, err)

	_, ok := c.Get("https://example.com")
	assert.False(t, ok)

	require.NoError(t, c.Set("https://example.com", []byte("<html>hi</html>")))
	data, ok := c.Get("https://example.com")
	require.True(t, ok)
	assert.Equal(t, "<html>hi</html>", string(data))

	_, ok = c.Get("https://example.com/other")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Minute)
	require.NoError(t, err)
	require.NoError(t, c.Set("u", []byte("x")))

	c.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, ok := c.Get("u")
	assert.False(t, ok)

	n, err := c.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entries, err := os.ReadDir(c.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCache_Disabled(t *testing.T) {
	dir := t.TempDir() + "/never"
	c, err := NewCache(dir, 0)
	require.NoError(t, err)

	require.NoError(t, c.Set("u", []byte("x")))
	_, ok := c.Get("u")
	assert.False(t, ok)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
