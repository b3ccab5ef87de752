package config

import (
	"context"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Encode.VideoCodec != "libx264" || cfg.Encode.Preset != "ultrafast" {
		t.Errorf("default encode profile not applied: %+v", cfg.Encode)
	}
	if cfg.Captions.FontName != "Arial" || cfg.Captions.FontSize != 40 {
		t.Errorf("default caption fallbacks not applied: %+v", cfg.Captions)
	}
	if len(cfg.VideoExtensions) == 0 || len(cfg.AudioExtensions) == 0 {
		t.Error("default extension lists are empty")
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := defaultConfig()
	cfg.Encode.Preset = "slow"
	cfg.Captions.FontName = "Helvetica"
	cfg.Captions.FontSize = 28
	cfg.FFmpeg.Threads = 4

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Encode.Preset != "slow" {
		t.Errorf("preset = %q, want slow", loaded.Encode.Preset)
	}
	if loaded.Captions.FontName != "Helvetica" || loaded.Captions.FontSize != 28 {
		t.Errorf("caption settings did not survive the round trip: %+v", loaded.Captions)
	}
	if loaded.FFmpeg.Threads != 4 {
		t.Errorf("threads = %d, want 4", loaded.FFmpeg.Threads)
	}
}

func TestConfigContext(t *testing.T) {
	cfg := defaultConfig()
	cfg.Encode.CRF = 18

	ctx := WithConfig(context.Background(), cfg)
	if got := FromContext(ctx); got.Encode.CRF != 18 {
		t.Errorf("stored config not returned from context: %+v", got.Encode)
	}
	if got := FromContext(context.Background()); got.Encode.CRF != 23 {
		t.Errorf("empty context should yield defaults, got %+v", got.Encode)
	}
}
