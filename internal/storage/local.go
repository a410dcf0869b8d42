package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/codebuildervaibhav/batch-transcription/internal/types"
)

const maxNameBytes = 100

// LocalStorage handles saving transcripts into a workspace's transcript directory
type LocalStorage struct {
	outputDir string
}

// NewLocalStorage creates a new local storage handler
func NewLocalStorage(outputDir string) *LocalStorage {
	return &LocalStorage{
		outputDir: outputDir,
	}
}

// SaveTranscript writes the transcript text under a name derived from the
// audio file's base name. Existing transcripts are never overwritten: a
// colliding name gets a _2, _3, ... suffix.
func (ls *LocalStorage) SaveTranscript(audioPath string, result *types.TranscriptionResult) (string, error) {
	if result == nil {
		return "", errors.New("no transcript to save")
	}

	base := sanitizeFilename(strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath)))
	for n := 1; ; n++ {
		name := base + ".txt"
		if n > 1 {
			name = fmt.Sprintf("%s_%d.txt", base, n)
		}
		txtPath := filepath.Join(ls.outputDir, name)

		f, err := os.OpenFile(txtPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create transcript: %w", err)
		}

		if _, err := f.WriteString(result.Text); err != nil {
			f.Close()
			return "", fmt.Errorf("failed to save transcript: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to save transcript: %w", err)
		}
		return txtPath, nil
	}
}

// sanitizeFilename removes invalid characters from filename
func sanitizeFilename(name string) string {
	result := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	result = strings.Trim(strings.TrimSpace(result), ".")

	if len(result) > maxNameBytes {
		cut := maxNameBytes
		for cut > 0 && !utf8.RuneStart(result[cut]) {
			cut--
		}
		result = strings.TrimSpace(result[:cut])
	}
	if result == "" {
		return "transcript"
	}
	return result
}
