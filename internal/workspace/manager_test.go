package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireCreatesLayout(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "base"), nil)

	ws, err := m.Acquire()
	require.NoError(t, err)

	assert.DirExists(t, ws.Root)
	assert.DirExists(t, ws.AudioDir)
	assert.DirExists(t, ws.TranscriptDir)
	assert.Equal(t, ws.Root, filepath.Dir(ws.AudioDir))
	assert.Equal(t, ws.Root, filepath.Dir(ws.ArchivePath()))
	assert.Equal(t, DirPrefix+ws.ID, filepath.Base(ws.Root))

	require.NoError(t, m.Release(ws))
	assert.NoDirExists(t, ws.Root)
}

func TestAcquireNeverReusesRoots(t *testing.T) {
	m := NewManager(t.TempDir(), nil)

	first, err := m.Acquire()
	require.NoError(t, err)
	second, err := m.Acquire()
	require.NoError(t, err)

	assert.NotEqual(t, first.Root, second.Root)

	require.NoError(t, os.WriteFile(filepath.Join(first.TranscriptDir, "a.txt"), []byte("a"), 0o644))
	entries, err := os.ReadDir(second.TranscriptDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReleaseIsIdempotent(t *testing.T) {
	m := NewManager(t.TempDir(), nil)
	ws, err := m.Acquire()
	require.NoError(t, err)

	require.NoError(t, m.Release(ws))
	require.NoError(t, m.Release(ws))
	require.NoError(t, m.Release(nil))
}

func TestItemDir(t *testing.T) {
	m := NewManager(t.TempDir(), nil)
	ws, err := m.Acquire()
	require.NoError(t, err)
	defer m.Release(ws)

	dir, err := ws.ItemDir(0)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws.AudioDir, "item-0001"), dir)
	assert.DirExists(t, dir)

	_, err = ws.ItemDir(0)
	var wsErr *Error
	require.ErrorAs(t, err, &wsErr)
}

func TestInUseTracksLiveWorkspaces(t *testing.T) {
	m := NewManager(t.TempDir(), nil)
	ws, err := m.Acquire()
	require.NoError(t, err)

	name := filepath.Base(ws.Root)
	assert.True(t, m.InUse(name))
	assert.False(t, m.InUse(DirPrefix+"someone-else"))

	require.NoError(t, m.Release(ws))
	assert.False(t, m.InUse(name))
}

func TestItemDirRefreshesRootMtime(t *testing.T) {
	m := NewManager(t.TempDir(), nil)
	ws, err := m.Acquire()
	require.NoError(t, err)
	defer m.Release(ws)

	old := time.Now().Add(-24 * time.Hour)
	require.NoError(t, os.Chtimes(ws.Root, old, old))

	_, err = ws.ItemDir(0)
	require.NoError(t, err)

	info, err := os.Stat(ws.Root)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), info.ModTime(), time.Minute)
}

func TestAcquireFailsWithoutBase(t *testing.T) {
	_, err := NewManager("", nil).Acquire()
	var wsErr *Error
	require.ErrorAs(t, err, &wsErr)
	assert.Equal(t, "create", wsErr.Op)
}

func TestAcquireFailsWhenBaseIsAFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := NewManager(file, nil).Acquire()
	var wsErr *Error
	require.ErrorAs(t, err, &wsErr)
}
