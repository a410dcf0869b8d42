// Package deps reports whether the external programs the service shells out
// to are installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/codebuildervaibhav/batch-transcription/internal/config"
)

// Requirement defines an external binary the service relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Available   bool
	Detail      string
}

// Requirements lists the binaries needed by cfg. The whisper CLI engine needs
// its interpreter; the server engine needs nothing local beyond the fetcher.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{Name: "yt-dlp", Command: cfg.Fetcher.Binary, Description: "Required to fetch audio"},
		{Name: "FFmpeg", Command: cfg.Whisper.FFmpeg, Description: "Required by yt-dlp for audio extraction"},
	}
	if cfg.Whisper.Engine == config.EngineCLI {
		reqs = append(reqs, Requirement{
			Name:        "Whisper",
			Command:     cfg.Whisper.Command,
			Description: "Python interpreter with openai-whisper installed",
		})
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Detail = path
		results = append(results, status)
	}
	return results
}

// Missing returns the dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Available {
			out = append(out, s)
		}
	}
	return out
}
