package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := OpenCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestOpenCatalog_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()

	c1, err := OpenCatalog(path)
	require.NoError(t, err)
	require.NoError(t, c1.RecordSave(ctx, "/case/001", "/case/001/001.ffxproj", "001", "alice", "t0"))
	require.NoError(t, c1.Close())

	// Reopening an already-migrated database must not disturb its contents.
	c2, err := OpenCatalog(path)
	require.NoError(t, err)
	t.Cleanup(func() { c2.Close() })

	found, ok, err := c2.Lookup(ctx, "/case/001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/case/001/001.ffxproj", found)
}

func TestCatalog_RecordSaveThenLookup(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	err := c.RecordSave(ctx, "/case/001", "/case/001/001.ffxproj", "001", "alice", "2026-03-14T15:09:26Z")
	require.NoError(t, err)

	path, found, err := c.Lookup(ctx, "/case/001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "/case/001/001.ffxproj", path)
}

func TestCatalog_Lookup_Unknown(t *testing.T) {
	c := openTestCatalog(t)

	_, found, err := c.Lookup(context.Background(), "/never/seen")

	require.NoError(t, err)
	assert.False(t, found)
}

func TestCatalog_RecordSave_UpsertsPath(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.RecordSave(ctx, "/case/001", "/old/001.ffxproj", "001", "alice", "t0"))
	require.NoError(t, c.RecordSave(ctx, "/case/001", "/new/001.ffxproj", "001", "bob", "t1"))

	path, found, err := c.Lookup(ctx, "/case/001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "/new/001.ffxproj", path, "last write wins")
}

func TestCatalog_RecordLoad_BumpsOpenedCount(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.RecordLoad(ctx, "/case/001", "/case/001/001.ffxproj", "001", "alice", "t0"))
	require.NoError(t, c.RecordLoad(ctx, "/case/001", "/case/001/001.ffxproj", "001", "alice", "t1"))

	entries, err := c.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].OpenedCount)
	assert.Equal(t, "t1", entries[0].LastOpenedAt)
}

func TestCatalog_Recent_OrdersByLastOpened(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.RecordLoad(ctx, "/case/001", "/p1", "001", "alice", "2026-03-14T10:00:00Z"))
	require.NoError(t, c.RecordLoad(ctx, "/case/002", "/p2", "002", "alice", "2026-03-14T12:00:00Z"))
	require.NoError(t, c.RecordSave(ctx, "/case/003", "/p3", "003", "alice", "2026-03-14T11:00:00Z"))

	entries, err := c.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "/case/002", entries[0].RootPath, "most recently opened first")
	assert.Equal(t, "/case/001", entries[1].RootPath)
	assert.Equal(t, "/case/003", entries[2].RootPath, "never-opened entries sort last")
}

func TestCatalog_Recent_RespectsLimit(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.RecordLoad(ctx, "/a", "/pa", "a", "u", "t1"))
	require.NoError(t, c.RecordLoad(ctx, "/b", "/pb", "b", "u", "t2"))

	entries, err := c.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCatalog_NilReceiverIsSafe(t *testing.T) {
	var c *Catalog
	ctx := context.Background()

	assert.NoError(t, c.Close())
	assert.NoError(t, c.RecordSave(ctx, "/r", "/p", "n", "u", "t"))
	assert.NoError(t, c.RecordLoad(ctx, "/r", "/p", "n", "u", "t"))

	_, found, err := c.Lookup(ctx, "/r")
	assert.NoError(t, err)
	assert.False(t, found)

	entries, err := c.Recent(ctx, 5)
	assert.NoError(t, err)
	assert.Nil(t, entries)
}
