package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdeck/paperdeck/internal/domain"
)

func testAssets() []domain.Asset {
	return []domain.Asset{
		{Name: "lecture1.pdf", Path: "lecture1.pdf", URL: "http://shelf/files/lecture1.pdf", SizeBytes: 1024},
		{Name: "lecture2.pdf", Path: "lecture2.pdf", URL: "http://shelf/files/lecture2.pdf"},
	}
}

func TestAssetStore_RoundTrip(t *testing.T) {
	s, err := NewAssetStore(t.TempDir(), "http://shelf:8000")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, ok := s.GetAssets()
	assert.False(t, ok)

	require.NoError(t, s.SaveAssets(testAssets()))

	got, ok := s.GetAssets()
	require.True(t, ok)
	assert.Equal(t, testAssets(), got)
}

func TestAssetStore_WholesaleReplace(t *testing.T) {
	s, err := NewAssetStore(t.TempDir(), "http://shelf:8000")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.SaveAssets(testAssets()))
	// An empty refresh wipes the previous entries instead of leaving them stale.
	require.NoError(t, s.SaveAssets([]domain.Asset{}))

	got, ok := s.GetAssets()
	require.True(t, ok)
	assert.Empty(t, got)
}

func TestAssetStore_Current(t *testing.T) {
	s, err := NewAssetStore(t.TempDir(), "http://shelf:8000")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, ok := s.GetCurrent()
	assert.False(t, ok)

	require.NoError(t, s.SaveCurrent("lecture2.pdf"))
	cur, ok := s.GetCurrent()
	require.True(t, ok)
	assert.Equal(t, "lecture2.pdf", cur)
}

func TestAssetStore_MemoryOnlyMode(t *testing.T) {
	s, err := NewAssetStore("", "")
	require.NoError(t, err)

	require.NoError(t, s.SaveAssets(testAssets()))
	got, ok := s.GetAssets()
	require.True(t, ok)
	assert.Len(t, got, 2)

	require.NoError(t, s.SaveCurrent("a.pdf"))
	cur, ok := s.GetCurrent()
	require.True(t, ok)
	assert.Equal(t, "a.pdf", cur)
}

func TestAssetStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewAssetStore(dir, "http://shelf:8000")
	require.NoError(t, err)
	require.NoError(t, s.SaveAssets(testAssets()))
	require.NoError(t, s.Close())

	reopened, err := NewAssetStore(dir, "http://shelf:8000")
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, ok := reopened.GetAssets()
	require.True(t, ok)
	assert.Equal(t, testAssets(), got)
}
