package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Encoding profile for rendered montages
	Encode EncodeConfig `yaml:"encode"`

	// Caption fallback settings used when the subtitle file defines no usable style
	Captions CaptionConfig `yaml:"captions"`

	// File discovery settings
	VideoExtensions []string `yaml:"video_extensions"`
	AudioExtensions []string `yaml:"audio_extensions"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
	Threads    int    `yaml:"threads"` // 0 = derive from CPU count
}

type EncodeConfig struct {
	VideoCodec   string `yaml:"video_codec"`
	AudioCodec   string `yaml:"audio_codec"`
	AudioBitrate string `yaml:"audio_bitrate"`
	Preset       string `yaml:"preset"`
	CRF          int    `yaml:"crf"`
}

type CaptionConfig struct {
	FontName string  `yaml:"font_name"`
	FontSize float64 `yaml:"font_size"`
	Margin   int     `yaml:"margin"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
			Threads:    0,
		},
		Encode: EncodeConfig{
			VideoCodec:   "libx264",
			AudioCodec:   "aac",
			AudioBitrate: "192k",
			Preset:       "ultrafast",
			CRF:          23,
		},
		Captions: CaptionConfig{
			FontName: "Arial",
			FontSize: 40,
			Margin:   10,
		},
		VideoExtensions: []string{".mp4", ".mov", ".avi", ".mkv", ".webm"},
		AudioExtensions: []string{".mp3", ".wav", ".aac", ".ogg", ".flac"},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".videocreate", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
