package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/batch-transcription/internal/types"
)

func TestSaveTranscriptNamesFromAudio(t *testing.T) {
	dir := t.TempDir()
	ls := NewLocalStorage(dir)

	path, err := ls.SaveTranscript("/ws/audios/item-0001/Clase 1.mp3", &types.TranscriptionResult{Text: "hola"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "Clase 1.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hola", string(data))
}

func TestSaveTranscriptNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	ls := NewLocalStorage(dir)

	first, err := ls.SaveTranscript("/a/Same.mp3", &types.TranscriptionResult{Text: "one"})
	require.NoError(t, err)
	second, err := ls.SaveTranscript("/b/Same.mp3", &types.TranscriptionResult{Text: "two"})
	require.NoError(t, err)
	third, err := ls.SaveTranscript("/c/Same.mp3", &types.TranscriptionResult{Text: "three"})
	require.NoError(t, err)

	assert.Equal(t, "Same.txt", filepath.Base(first))
	assert.Equal(t, "Same_2.txt", filepath.Base(second))
	assert.Equal(t, "Same_3.txt", filepath.Base(third))

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestSaveTranscriptErrors(t *testing.T) {
	_, err := NewLocalStorage(t.TempDir()).SaveTranscript("/a.mp3", nil)
	require.Error(t, err)

	_, err = NewLocalStorage(filepath.Join(t.TempDir(), "missing")).SaveTranscript("/a.mp3", &types.TranscriptionResult{})
	require.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "AC_DC_ Live", sanitizeFilename("AC/DC: Live"))
	assert.Equal(t, "transcript", sanitizeFilename(" .. "))
	assert.Equal(t, "tab", sanitizeFilename("t\tab"))

	long := sanitizeFilename(strings.Repeat("é", 80))
	assert.LessOrEqual(t, len(long), maxNameBytes)
	assert.True(t, utf8.ValidString(long))
}
