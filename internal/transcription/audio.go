package transcription

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/codebuildervaibhav/batch-transcription/internal/types"
)

// NormalizeAudio converts an audio file to 16kHz mono WAV inside outputDir.
func NormalizeAudio(ctx context.Context, run Runner, ffmpeg, inputPath, outputDir string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(outputDir, base+".wav")

	output, err := run(ctx, ffmpeg,
		"-hide_banner",
		"-nostdin",
		"-i", inputPath,
		"-vn",
		"-ar", "16000", // 16kHz sample rate
		"-ac", "1", // Mono
		"-c:a", "pcm_s16le", // 16-bit PCM
		"-y",
		outputPath,
	)
	if err != nil {
		return "", fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	return outputPath, nil
}

// ValidateAudioFormat checks if the file format is supported
func ValidateAudioFormat(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return ext != "" && slices.Contains(types.SupportedAudioFormats, ext)
}
