package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/codebuildervaibhav/batch-transcription/internal/fetcher"
	"github.com/codebuildervaibhav/batch-transcription/internal/transcription"
	"github.com/codebuildervaibhav/batch-transcription/internal/types"
)

// fetchPlan describes what the fake fetcher does for one URL.
type fetchPlan struct {
	files []string // written into the target dir, content = url
	err   error
	panic bool
}

type fakeFetcher struct {
	mu    sync.Mutex
	plans map[string]fetchPlan
	dirs  []string
}

func (f *fakeFetcher) Extension() string { return ".mp3" }

func (f *fakeFetcher) Fetch(ctx context.Context, url, targetDir string) error {
	f.mu.Lock()
	f.dirs = append(f.dirs, targetDir)
	plan, ok := f.plans[url]
	f.mu.Unlock()

	if !ok {
		plan = fetchPlan{files: []string{titleOf(url) + ".mp3"}}
	}
	if plan.panic {
		panic("fetcher crashed")
	}
	if plan.err != nil {
		return &fetcher.FetchError{URL: url, Err: plan.err}
	}
	for _, name := range plan.files {
		if err := os.WriteFile(filepath.Join(targetDir, name), []byte(url), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// fakeTranscriber echoes the audio file content, failing for names in failOn.
type fakeTranscriber struct {
	mu     sync.Mutex
	failOn map[string]bool
	seen   []string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (*types.TranscriptionResult, error) {
	f.mu.Lock()
	f.seen = append(f.seen, filepath.Base(audioPath))
	f.mu.Unlock()

	if f.failOn[filepath.Base(audioPath)] {
		return nil, &transcription.TranscriptionError{AudioPath: audioPath, Err: errors.New("decode failed")}
	}
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, err
	}
	text := "transcript of " + string(data)
	return &types.TranscriptionResult{Text: text, WordCount: len(strings.Fields(text)), Language: "en"}, nil
}

func titleOf(url string) string {
	return url[strings.LastIndex(url, "/")+1:]
}
