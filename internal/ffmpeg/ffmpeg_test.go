package ffmpeg

import (
	"os"
	"os/exec"
	"testing"

	"github.com/rs/zerolog"
)

// skipIfNoFFmpeg skips the test if ffmpeg is not available
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH")
	}
}

func TestExecutorCreation(t *testing.T) {
	skipIfNoFFmpeg(t)

	logger := zerolog.New(os.Stderr)
	e, err := New(logger, "", "", 0)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	if e.ffmpegPath == "" {
		t.Error("ffmpeg path is empty")
	}
	if e.ffprobePath == "" {
		t.Error("ffprobe path is empty")
	}
	if e.threads < 1 {
		t.Errorf("thread count must be at least 1, got %d", e.threads)
	}
}

func TestExecutorMissingBinary(t *testing.T) {
	logger := zerolog.New(os.Stderr)
	if _, err := New(logger, "definitely-not-ffmpeg", "", 0); err == nil {
		t.Error("expected error for a missing ffmpeg binary")
	}
}
