package montage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

const batchSubs = `[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, Alignment
Style: Default,Arial,40,&H00FFFFFF,2

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:00.00,0:00:02.00,Default,,0,0,0,,hello
Dialogue: 0,0:00:02.00,0:00:05.00,Default,,0,0,0,,world
`

func writeBatchSubs(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timing.ass")
	if err := os.WriteFile(path, []byte(batchSubs), 0644); err != nil {
		t.Fatalf("failed to write subtitle file: %v", err)
	}
	return path
}

func TestBatchRun(t *testing.T) {
	engine := newFakeEngine()
	engine.addSource("clip.mp4", 10, 30, 1280, 720)
	engine.addSource("track.mp3", 10, 0, 0, 0)
	engine.addSource("other.mp3", 10, 0, 0, 0)

	batch := NewBatch(engine, 42)
	succeeded, attempted := batch.Run(context.Background(), BatchOptions{
		VideoFiles:   []string{"clip.mp4"},
		AudioFiles:   []string{"track.mp3", "other.mp3"},
		SubtitlePath: writeBatchSubs(t),
		OutputDir:    t.TempDir(),
		Count:        3,
	})

	if succeeded != 3 || attempted != 3 {
		t.Errorf("got %d/%d, want 3/3", succeeded, attempted)
	}
	if len(engine.outputs) != 3 {
		t.Fatalf("got %d rendered outputs, want 3", len(engine.outputs))
	}

	namePattern := regexp.MustCompile(`^montage_subs_timing_audio_(track|other)_\d{6}_\d+\.mp4$`)
	for _, out := range engine.outputs {
		if !namePattern.MatchString(filepath.Base(out)) {
			t.Errorf("output name %q does not match the generated pattern", filepath.Base(out))
		}
	}
	if !engine.balanced() {
		t.Errorf("decoder leak across batch: %d opens, %d closes", engine.opens, engine.closes)
	}
}

func TestBatchContinuesAfterFailures(t *testing.T) {
	engine := newFakeEngine()
	// No sources registered: every probe fails, every assembly fails

	batch := NewBatch(engine, 1)
	succeeded, attempted := batch.Run(context.Background(), BatchOptions{
		VideoFiles:   []string{"clip.mp4"},
		AudioFiles:   []string{"track.mp3"},
		SubtitlePath: writeBatchSubs(t),
		OutputDir:    t.TempDir(),
		Count:        4,
	})

	if attempted != 4 {
		t.Errorf("batch must attempt every montage, got %d of 4", attempted)
	}
	if succeeded != 0 {
		t.Errorf("got %d successes, want 0", succeeded)
	}
}

func TestBatchEmptyPools(t *testing.T) {
	batch := NewBatch(newFakeEngine(), 1)
	succeeded, attempted := batch.Run(context.Background(), BatchOptions{
		SubtitlePath: writeBatchSubs(t),
		OutputDir:    t.TempDir(),
		Count:        2,
	})
	if succeeded != 0 || attempted != 0 {
		t.Errorf("empty pools should do nothing, got %d/%d", succeeded, attempted)
	}
}
