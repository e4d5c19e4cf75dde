package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *ManifestStore {
	t.Helper()
	s, err := NewManifestStore(filepath.Join(t.TempDir(), "manifest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Record(&Asset{Name: "qrcode_basic.png", Kind: KindQR, Variant: "basic", Width: 450, Height: 450, Bytes: 1200, SHA256: "aa", GeneratedAt: 1}))
	require.NoError(t, s.Record(&Asset{Name: "favicon-transparent.png", Kind: KindFavicon, Variant: "transparent", Width: 512, Height: 512, Bytes: 9000, SHA256: "bb", GeneratedAt: 2}))

	all, err := s.List("")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "favicon-transparent.png", all[0].Name)
	assert.Equal(t, "qrcode_basic.png", all[1].Name)

	qrs, err := s.List(KindQR)
	require.NoError(t, err)
	require.Len(t, qrs, 1)
	assert.Equal(t, 450, qrs[0].Width)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRecordReplacesExisting(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Record(&Asset{Name: "favicon.ico", Kind: KindICO, Width: 48, Height: 48, Bytes: 10, SHA256: "old", GeneratedAt: 1}))
	require.NoError(t, s.Record(&Asset{Name: "favicon.ico", Kind: KindICO, Width: 48, Height: 48, Bytes: 20, SHA256: "new", GeneratedAt: 2}))

	a, ok, err := s.Get("favicon.ico")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", a.SHA256)
	assert.Equal(t, int64(20), a.Bytes)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetUnknown(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.Get("missing.png")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.db")
	s, err := NewManifestStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(&Asset{Name: "a.png", Kind: KindFavicon, Width: 16, Height: 16, SHA256: "x"}))
	require.NoError(t, s.Close())

	s, err = NewManifestStore(path)
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get("a.png")
	require.NoError(t, err)
	assert.True(t, ok)
}
