// Package workspace allocates the per-request scratch directories that hold
// staged audio and transcripts, and tears them down when the request ends.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DirPrefix marks workspace roots under the base directory.
	DirPrefix = "batch-"

	audioDirName      = "audios"
	transcriptDirName = "transcriptions"
	archiveName       = "transcriptions.zip"
)

// Error is a workspace allocation or teardown failure. It is fatal to the request.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("workspace %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Workspace is one request's ephemeral directory tree.
type Workspace struct {
	ID            string
	Root          string
	AudioDir      string
	TranscriptDir string

	releaseOnce sync.Once
	releaseErr  error
}

// ItemDir creates and returns the audio staging directory for the item at index.
// It also refreshes the root's mtime so sweepers in other processes see the
// workspace as active.
func (w *Workspace) ItemDir(index int) (string, error) {
	dir := filepath.Join(w.AudioDir, fmt.Sprintf("item-%04d", index+1))
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", &Error{Op: "create item dir", Path: dir, Err: err}
	}
	now := time.Now()
	if err := os.Chtimes(w.Root, now, now); err != nil {
		return "", &Error{Op: "touch", Path: w.Root, Err: err}
	}
	return dir, nil
}

// ArchivePath is where the batch archive is written, outside the transcript directory.
func (w *Workspace) ArchivePath() string {
	return filepath.Join(w.Root, archiveName)
}

// Manager hands out independent workspaces rooted under one base directory.
type Manager struct {
	base   string
	logger *slog.Logger

	mu   sync.Mutex
	live map[string]struct{}
}

// NewManager creates a manager rooted at base.
func NewManager(base string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{base: base, logger: logger, live: make(map[string]struct{})}
}

// Base returns the directory that contains every workspace root.
func (m *Manager) Base() string {
	return m.base
}

// InUse reports whether name is the root directory name of a workspace this
// manager has handed out and not yet released.
func (m *Manager) InUse(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.live[name]
	return ok
}

// Acquire creates a fresh, uniquely named workspace.
func (m *Manager) Acquire() (*Workspace, error) {
	if strings.TrimSpace(m.base) == "" {
		return nil, &Error{Op: "create", Path: m.base, Err: errors.New("base directory not configured")}
	}
	if err := os.MkdirAll(m.base, 0o755); err != nil {
		return nil, &Error{Op: "create base", Path: m.base, Err: err}
	}

	id := uuid.New().String()
	root := filepath.Join(m.base, DirPrefix+id)
	// Mkdir rather than MkdirAll: an existing root must never be reused.
	if err := os.Mkdir(root, 0o700); err != nil {
		return nil, &Error{Op: "create", Path: root, Err: err}
	}

	ws := &Workspace{
		ID:            id,
		Root:          root,
		AudioDir:      filepath.Join(root, audioDirName),
		TranscriptDir: filepath.Join(root, transcriptDirName),
	}
	for _, dir := range []string{ws.AudioDir, ws.TranscriptDir} {
		if err := os.Mkdir(dir, 0o700); err != nil {
			_ = os.RemoveAll(root)
			return nil, &Error{Op: "create", Path: dir, Err: err}
		}
	}

	m.mu.Lock()
	m.live[filepath.Base(root)] = struct{}{}
	m.mu.Unlock()

	m.logger.Debug("workspace acquired", "workspace", id, "root", root)
	return ws, nil
}

// Release recursively deletes the workspace. Repeated calls return the first result.
func (m *Manager) Release(ws *Workspace) error {
	if ws == nil {
		return nil
	}
	ws.releaseOnce.Do(func() {
		defer func() {
			m.mu.Lock()
			delete(m.live, filepath.Base(ws.Root))
			m.mu.Unlock()
		}()
		if err := os.RemoveAll(ws.Root); err != nil {
			ws.releaseErr = &Error{Op: "remove", Path: ws.Root, Err: err}
			m.logger.Error("workspace teardown failed", "workspace", ws.ID, "error", err)
			return
		}
		m.logger.Debug("workspace released", "workspace", ws.ID)
	})
	return ws.releaseErr
}
