package cleanup

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/codebuildervaibhav/batch-transcription/internal/workspace"
)

// LiveSet reports whether a workspace root, by directory name, is still owned
// by a running request in this process.
type LiveSet interface {
	InUse(name string) bool
}

// Scheduler removes workspace roots left behind by a crashed or killed process.
// Roots held by this process are never touched. Active roots of other processes
// keep a fresh mtime, so only roots idle for longer than maxAge are orphaned.
type Scheduler struct {
	baseDir  string
	interval time.Duration
	maxAge   time.Duration
	logger   *slog.Logger
	live     LiveSet

	stopChan chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// SweepResult reports one sweep.
type SweepResult struct {
	Removed []string
	Freed   int64
	Errors  []error
}

// NewScheduler creates a new cleanup scheduler
func NewScheduler(baseDir string, interval, maxAge time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		baseDir:  baseDir,
		interval: interval,
		maxAge:   maxAge,
		logger:   logger,
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
}

// WithLive makes the sweep skip roots that live reports as in use.
func (s *Scheduler) WithLive(live LiveSet) *Scheduler {
	s.live = live
	return s
}

// Start runs one sweep immediately and then every interval until Stop.
// A zero interval disables the periodic sweep.
func (s *Scheduler) Start() {
	s.logger.Info("running initial workspace sweep", "base", s.baseDir)
	s.Sweep()

	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.stopChan:
				return
			}
		}
	}()

	s.logger.Info("cleanup scheduler started", "interval", s.interval, "max_age", s.maxAge)
}

// Stop stops the cleanup scheduler
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.logger.Info("cleanup scheduler stopped")
	})
}

// Sweep removes every workspace root older than maxAge.
func (s *Scheduler) Sweep() SweepResult {
	var result SweepResult
	if s.maxAge <= 0 {
		return result
	}

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, err)
			s.logger.Warn("workspace sweep failed", "base", s.baseDir, "error", err)
		}
		return result
	}

	cutoff := s.now().Add(-s.maxAge)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), workspace.DirPrefix) {
			continue
		}
		if s.live != nil && s.live.InUse(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(s.baseDir, entry.Name())
		size := dirSize(path)
		if err := os.RemoveAll(path); err != nil {
			result.Errors = append(result.Errors, err)
			s.logger.Warn("failed to remove stale workspace", "path", path, "error", err)
			continue
		}
		result.Removed = append(result.Removed, path)
		result.Freed += size
		s.logger.Info("removed stale workspace",
			"path", path,
			"age", s.now().Sub(info.ModTime()).Round(time.Minute),
			"size_kb", size/1024,
		)
	}

	if len(result.Removed) > 0 {
		s.logger.Info("workspace sweep complete",
			"removed", len(result.Removed),
			"freed_mb", float64(result.Freed)/(1024*1024),
		)
	}
	return result
}

func dirSize(path string) int64 {
	var size int64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size
}
