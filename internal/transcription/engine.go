package transcription

import (
	"context"
	"fmt"

	"github.com/codebuildervaibhav/batch-transcription/internal/types"
)

// Engine is one speech-to-text backend. Implementations need not be safe
// for concurrent use; Transcriber serializes every call.
type Engine interface {
	Name() string
	Check(ctx context.Context) error
	Transcribe(ctx context.Context, audioPath string) (*types.TranscriptionResult, error)
}

// TranscriptionError reports a decode or model failure for one audio file.
type TranscriptionError struct {
	AudioPath string
	Err       error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcribe %s: %v", e.AudioPath, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)
