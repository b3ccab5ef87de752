package ffmpeg

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/yarxhe/videocreate/internal/config"
	"github.com/yarxhe/videocreate/internal/montage"
)

// Engine implements montage.Engine on top of the subprocess executor.
// Decoders and excerpts are lightweight descriptors; the whole timeline is
// realized by a single ffmpeg invocation in Render.
type Engine struct {
	logger   zerolog.Logger
	exec     *Executor
	encode   config.EncodeConfig
	captions config.CaptionConfig
}

// NewEngine creates an engine rendering with the given encoding profile
// and caption fallback settings
func NewEngine(exec *Executor, encode config.EncodeConfig, captions config.CaptionConfig) *Engine {
	return &Engine{
		logger:   exec.logger.With().Str("component", "engine").Logger(),
		exec:     exec,
		encode:   encode,
		captions: captions,
	}
}

// Probe reports a media file's metadata
func (e *Engine) Probe(ctx context.Context, path string) (*montage.SourceInfo, error) {
	return e.exec.Probe(ctx, path)
}

// OpenDecoder prepares a source for excerpting at the target dimensions
func (e *Engine) OpenDecoder(ctx context.Context, path string, width, height int) (montage.Decoder, error) {
	info, err := e.exec.Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	e.logger.Debug().Str("source", filepath.Base(path)).Int("width", width).Int("height", height).Msg("decoder opened")
	return &decoder{info: info, width: width, height: height}, nil
}

// BuildCaption validates a caption overlay
func (e *Engine) BuildCaption(c montage.Caption) (*montage.Caption, error) {
	if c.Text == "" {
		return nil, fmt.Errorf("caption text is empty")
	}
	if c.Size <= 0 {
		c.Size = e.captions.FontSize
	}
	if c.Font == "" {
		c.Font = e.captions.FontName
	}
	return &c, nil
}

// Render realizes the timeline with one ffmpeg run: a black base the size
// and length of the montage, every excerpt trimmed, scaled and overlaid at
// its placement time, captions drawn with drawtext, and the background
// audio looped as needed and trimmed to the montage duration.
func (e *Engine) Render(ctx context.Context, tl *montage.Timeline, outputPath string) error {
	if len(tl.Segments) == 0 {
		return fmt.Errorf("timeline has no segments")
	}

	audio, err := e.exec.Probe(ctx, tl.AudioPath)
	if err != nil {
		return fmt.Errorf("probe audio: %w", err)
	}
	if audio.Duration <= 0 {
		return fmt.Errorf("audio %s reports no duration", filepath.Base(tl.AudioPath))
	}

	args := renderArgs(tl, audio.Duration, e.encode, e.captions.Margin, outputPath)

	e.logger.Info().
		Str("output", filepath.Base(outputPath)).
		Int("segments", len(tl.Segments)).
		Int("captions", len(tl.Captions)).
		Float64("duration", tl.Duration).
		Msg("rendering montage")

	runOpts := RunOptions{
		Args: args,
		ProgressHandler: func(p *Progress) {
			e.logger.Debug().Int("frame", p.Frame).Str("time", p.Time).Str("speed", p.Speed).Msg("render progress")
		},
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("render output")
		},
	}

	if err := e.exec.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	e.logger.Info().Str("output", outputPath).Msg("render complete")
	return nil
}

// decoder is an open source handle. Opening and closing are bookkeeping
// only, but the balance is still enforced so leaks stay observable.
type decoder struct {
	info   *montage.SourceInfo
	width  int
	height int
	closed bool
}

func (d *decoder) Info() *montage.SourceInfo {
	return d.info
}

func (d *decoder) Excerpt(offset, length float64) (*montage.Segment, error) {
	if d.closed {
		return nil, fmt.Errorf("decoder for %s is closed", filepath.Base(d.info.Path))
	}
	if length <= 0 {
		return nil, fmt.Errorf("excerpt length must be positive")
	}
	if offset < 0 {
		offset = 0
	}

	// A source shorter than the slot contributes whole, last frame held
	hold := false
	if offset+length > d.info.Duration {
		offset = 0
		hold = true
	}

	return &montage.Segment{
		Source:   d.info,
		Offset:   offset,
		Duration: length,
		Hold:     hold,
	}, nil
}

func (d *decoder) Close() error {
	d.closed = true
	return nil
}
