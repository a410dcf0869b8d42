package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/batch-transcription/internal/fetcher"
	"github.com/codebuildervaibhav/batch-transcription/internal/transcription"
	"github.com/codebuildervaibhav/batch-transcription/internal/workspace"
)

func newWorkspace(t *testing.T) (*workspace.Manager, *workspace.Workspace) {
	t.Helper()
	m := workspace.NewManager(t.TempDir(), nil)
	ws, err := m.Acquire()
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Release(ws) })
	return m, ws
}

func TestProcessTranscribesAndRemovesAudio(t *testing.T) {
	_, ws := newWorkspace(t)
	f := &fakeFetcher{}
	p := NewProcessor(f, &fakeTranscriber{}, nil)

	out := p.Process(context.Background(), 0, "https://vimeo.com/Lecture", ws)

	require.True(t, out.Transcribed(), "err: %v", out.Err)
	assert.Equal(t, filepath.Join(ws.TranscriptDir, "Lecture.txt"), out.TranscriptPath)
	assert.Equal(t, "Lecture.mp3", out.AudioFile)
	assert.Equal(t, 0, out.Index)

	data, err := os.ReadFile(out.TranscriptPath)
	require.NoError(t, err)
	assert.Equal(t, "transcript of https://vimeo.com/Lecture", string(data))

	require.Len(t, f.dirs, 1)
	assert.NoDirExists(t, f.dirs[0], "staged audio is deleted after transcription")
}

func TestProcessFetchFailure(t *testing.T) {
	_, ws := newWorkspace(t)
	boom := errors.New("HTTP Error 404")
	f := &fakeFetcher{plans: map[string]fetchPlan{"https://x/gone": {err: boom}}}
	tr := &fakeTranscriber{}

	out := NewProcessor(f, tr, nil).Process(context.Background(), 0, "https://x/gone", ws)

	assert.False(t, out.Transcribed())
	assert.Equal(t, StageFetch, out.Stage)
	var fetchErr *fetcher.FetchError
	assert.ErrorAs(t, out.Err, &fetchErr)
	assert.ErrorIs(t, out.Err, boom)
	assert.Empty(t, tr.seen, "transcriber is not called after a fetch failure")
}

func TestProcessLocateOutputFailure(t *testing.T) {
	_, ws := newWorkspace(t)
	f := &fakeFetcher{plans: map[string]fetchPlan{
		"https://x/wrong-format": {files: []string{"clip.webm", "clip.mp3.part"}},
	}}

	out := NewProcessor(f, &fakeTranscriber{}, nil).Process(context.Background(), 0, "https://x/wrong-format", ws)

	assert.Equal(t, StageLocate, out.Stage)
	assert.ErrorIs(t, out.Err, ErrNoOutput)
}

func TestProcessTranscribeFailureKeepsAudioForTeardown(t *testing.T) {
	_, ws := newWorkspace(t)
	f := &fakeFetcher{}
	tr := &fakeTranscriber{failOn: map[string]bool{"noise.mp3": true}}

	out := NewProcessor(f, tr, nil).Process(context.Background(), 0, "https://x/noise", ws)

	assert.Equal(t, StageTranscribe, out.Stage)
	var trErr *transcription.TranscriptionError
	assert.ErrorAs(t, out.Err, &trErr)
	assert.FileExists(t, filepath.Join(f.dirs[0], "noise.mp3"))

	entries, err := os.ReadDir(ws.TranscriptDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessRecoversPanics(t *testing.T) {
	_, ws := newWorkspace(t)
	f := &fakeFetcher{plans: map[string]fetchPlan{"https://x/crash": {panic: true}}}

	var out Outcome
	assert.NotPanics(t, func() {
		out = NewProcessor(f, &fakeTranscriber{}, nil).Process(context.Background(), 0, "https://x/crash", ws)
	})
	assert.Equal(t, StageFetch, out.Stage)
	assert.ErrorContains(t, out.Err, "panic: fetcher crashed")
}

func TestProcessStoreFailure(t *testing.T) {
	_, ws := newWorkspace(t)
	require.NoError(t, os.RemoveAll(ws.TranscriptDir))

	out := NewProcessor(&fakeFetcher{}, &fakeTranscriber{}, nil).Process(context.Background(), 0, "https://x/a", ws)
	assert.Equal(t, StageStore, out.Stage)
	assert.Error(t, out.Err)
}

func TestProcessWorkspaceFailure(t *testing.T) {
	_, ws := newWorkspace(t)
	require.NoError(t, os.RemoveAll(ws.AudioDir))

	out := NewProcessor(&fakeFetcher{}, &fakeTranscriber{}, nil).Process(context.Background(), 0, "https://x/a", ws)
	assert.Equal(t, StageWorkspace, out.Stage)
	var wsErr *workspace.Error
	assert.ErrorAs(t, out.Err, &wsErr)
}

func TestLocateOutputPicksFirstInNameOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b-track.mp3", "cover.jpg", "a-track.MP3", "c-track.mp3"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "0-dir.mp3"), 0o755))

	got, err := LocateOutput(dir, ".mp3", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a-track.MP3"), got)
}

func TestLocateOutputEmptyDir(t *testing.T) {
	_, err := LocateOutput(t.TempDir(), ".mp3", nil)
	assert.ErrorIs(t, err, ErrNoOutput)

	_, err = LocateOutput(filepath.Join(t.TempDir(), "missing"), ".mp3", nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoOutput)
}
