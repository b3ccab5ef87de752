package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00.000"},
		{5.5, "00:00:05.500"},
		{90.25, "00:01:30.250"},
		{3723.04, "01:02:03.040"},
	}
	for _, tt := range tests {
		if got := FormatSeconds(tt.in); got != tt.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"24000/1001", 24000.0 / 1001.0},
		{"0/0", 0},
		{"garbage", 0},
		{"30", 0},
	}
	for _, tt := range tests {
		if got := ParseFrameRate(tt.in); got != tt.want {
			t.Errorf("ParseFrameRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.mp4", "b.MOV", "c.txt", "d.mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	found := FindFiles(dir, []string{".mp4", ".mov"})
	if len(found) != 2 {
		t.Errorf("got %v, want the mp4 and MOV files", found)
	}

	if got := FindFiles(filepath.Join(dir, "missing"), []string{".mp4"}); len(got) != 0 {
		t.Errorf("missing dir should yield nothing, got %v", got)
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/tmp/track.mp3", "track"},
		{"clip.tar.gz", "clip.tar"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := BaseName(tt.in); got != tt.want {
			t.Errorf("BaseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
