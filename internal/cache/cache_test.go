package cache

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairKey(t *testing.T) {
	a, b := Digest([]byte("submission a")), Digest([]byte("submission b"))

	assert.Equal(t, PairKey(a, b), PairKey(b, a))
	assert.NotEqual(t, PairKey(a, b), PairKey(a, a))
	assert.Contains(t, PairKey(a, b), "compass:v1:")
	assert.Len(t, a, 64)
}

func TestScoreEncoding(t *testing.T) {
	for _, score := range []float64{0, 0.5, 1, 1.0 / 3} {
		got, err := DecodeScore(EncodeScore(score))
		require.NoError(t, err)
		assert.Equal(t, score, got)
	}

	_, err := DecodeScore([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrCorruptEntry)

	for _, bad := range []float64{-0.1, 1.5, math.NaN()} {
		_, err := DecodeScore(EncodeScore(bad))
		require.ErrorIs(t, err, ErrCorruptEntry)
	}
}

func TestGetScore_DropsCorruptEntries(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	require.NoError(t, c.Set("bad", []byte("nope"), 0))

	_, found := GetScore(c, "bad")
	assert.False(t, found)
	_, stillThere := c.Get("bad")
	assert.False(t, stillThere)

	require.NoError(t, SetScore(c, "good", 0.25))
	score, found := GetScore(c, "good")
	assert.True(t, found)
	assert.Equal(t, 0.25, score)
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	require.NoError(t, c.Set("k", []byte("v"), 0))
	val, found := c.Get("k")
	require.True(t, found)
	assert.Equal(t, []byte("v"), val)

	require.NoError(t, c.Set("short", []byte("x"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, found = c.Get("short")
	assert.False(t, found)

	require.NoError(t, c.Delete("k"))
	_, found = c.Get("k")
	assert.False(t, found)

	require.NoError(t, c.Set("k2", []byte("v"), 0))
	require.NoError(t, c.Clear())
	_, found = c.Get("k2")
	assert.False(t, found)
}

func TestDiskCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := NewDiskCache(dir, time.Hour)

	_, found := c.Get("missing")
	assert.False(t, found)

	require.NoError(t, c.Set("compass:v1:abc", []byte("payload"), 0))
	val, found := c.Get("compass:v1:abc")
	require.True(t, found)
	assert.Equal(t, []byte("payload"), val)

	_, err := os.Stat(filepath.Join(dir, "compass_v1_abc.cache"))
	require.NoError(t, err, "keys are sanitized into file names")

	require.NoError(t, c.Delete("compass:v1:abc"))
	require.NoError(t, c.Delete("compass:v1:abc"), "deleting a missing key is not an error")
	_, found = c.Get("compass:v1:abc")
	assert.False(t, found)
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set("k", []byte("v"), 0))
	_, found := c.Get("k")
	require.True(t, found)

	now = now.Add(2 * time.Minute)
	_, found = c.Get("k")
	assert.False(t, found)

	_, err := os.Stat(c.path("k"))
	assert.ErrorIs(t, err, os.ErrNotExist, "expired entries are removed")
}

func TestDiskCache_CorruptFile(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)
	require.NoError(t, os.WriteFile(c.path("k"), []byte("{not json"), 0644))

	_, found := c.Get("k")
	assert.False(t, found)
}

func TestLayeredCache(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)

	require.NoError(t, SetScore(c, "pair", 0.75))

	// a fresh process only has the disk tier
	fresh := NewLayeredCache(time.Minute, dir, time.Hour)
	score, found := GetScore(fresh, "pair")
	require.True(t, found)
	assert.Equal(t, 0.75, score)

	_, promoted := fresh.memory.Get("pair")
	assert.True(t, promoted, "disk hits are promoted to memory")

	require.NoError(t, fresh.Delete("pair"))
	_, found = fresh.Get("pair")
	assert.False(t, found)

	require.NoError(t, c.Clear())
}
