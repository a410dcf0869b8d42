package pipeline

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/codebuildervaibhav/batch-transcription/internal/types"
)

// Stage identifies where an item failed.
type Stage string

const (
	StageWorkspace  Stage = "workspace"
	StageFetch      Stage = "fetch"
	StageLocate     Stage = "locate-output"
	StageTranscribe Stage = "transcribe"
	StageStore      Stage = "store-transcript"
)

// Outcome is the result for one URL: either Transcribed (Err == nil) or
// Failed at Stage with cause Err.
type Outcome struct {
	Index          int
	URL            string
	Stage          Stage
	Err            error
	AudioFile      string
	TranscriptPath string
	Result         *types.TranscriptionResult
	Elapsed        time.Duration
}

// Transcribed reports whether the item produced a transcript.
func (o Outcome) Transcribed() bool {
	return o.Err == nil && o.TranscriptPath != ""
}

func transcribed(index int, url, audioFile, transcriptPath string, result *types.TranscriptionResult) Outcome {
	return Outcome{Index: index, URL: url, AudioFile: audioFile, TranscriptPath: transcriptPath, Result: result}
}

func failed(index int, url string, stage Stage, err error) Outcome {
	return Outcome{Index: index, URL: url, Stage: stage, Err: err}
}

// Summary aggregates a batch's outcomes.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// Summarize counts outcomes.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Transcribed() {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

// ManifestName is the archive entry written when manifests are enabled.
const ManifestName = "manifest.json"

type manifest struct {
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Items     []manifestItem `json:"items"`
}

type manifestItem struct {
	URL        string  `json:"url"`
	Status     string  `json:"status"`
	Stage      string  `json:"stage,omitempty"`
	Error      string  `json:"error,omitempty"`
	Transcript string  `json:"transcript,omitempty"`
	Words      int     `json:"words,omitempty"`
	Language   string  `json:"language,omitempty"`
	Duration   float64 `json:"duration_seconds,omitempty"`
}

// Manifest renders outcomes as the JSON document stored in the archive.
func Manifest(outcomes []Outcome) ([]byte, error) {
	summary := Summarize(outcomes)
	m := manifest{
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
		Items:     make([]manifestItem, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		item := manifestItem{URL: o.URL}
		if o.Transcribed() {
			item.Status = types.StatusTranscribed
			item.Transcript = filepath.Base(o.TranscriptPath)
			if o.Result != nil {
				item.Words = o.Result.WordCount
				item.Language = o.Result.Language
				item.Duration = o.Result.Duration
			}
		} else {
			item.Status = types.StatusFailed
			item.Stage = string(o.Stage)
			if o.Err != nil {
				item.Error = o.Err.Error()
			}
		}
		m.Items = append(m.Items, item)
	}
	return json.MarshalIndent(m, "", "  ")
}
