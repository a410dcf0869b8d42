package types

import "time"

// Item status constants used in outcome reports
const (
	StatusTranscribed = "TRANSCRIBED"
	StatusFailed      = "FAILED"
)

// TranscriptionResult represents the output from Whisper
type TranscriptionResult struct {
	Text      string
	Language  string
	Duration  float64
	Segments  []Segment
	WordCount int
	Model     string
	Elapsed   time.Duration
}

// Segment represents a timestamped segment of transcription
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// SupportedAudioFormats lists the audio extensions the pipeline knows how to stage
var SupportedAudioFormats = []string{"mp3", "wav", "m4a", "ogg", "flac", "webm", "aac", "opus"}
