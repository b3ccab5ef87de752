package montage

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yarxhe/videocreate/internal/logging"
	"github.com/yarxhe/videocreate/internal/subtitle"
)

const (
	// Events shorter than this after ceiling truncation are treated as
	// timing noise and skipped.
	noiseThreshold = 0.02

	// Sources that probe below this duration are excluded from the pool
	minSourceDuration = 0.1

	// Frame rate assumed for sources that report none
	fallbackFrameRate = 24.0
)

// Options bound one assembly run
type Options struct {
	MaxDuration float64 // seconds, 0 = unbounded
	MinDuration float64 // seconds, 0 = unchecked
	OutputPath  string
}

// Assembler maps subtitle events onto randomly chosen video excerpts and
// positioned captions, producing one continuous timeline per run. All
// randomness comes from the injected source so selection is reproducible
// under a fixed seed.
type Assembler struct {
	logger zerolog.Logger
	engine Engine
	rng    *rand.Rand
}

// NewAssembler creates an assembler driving the given engine
func NewAssembler(engine Engine, rng *rand.Rand) *Assembler {
	return &Assembler{
		logger: logging.WithComponent("assembler"),
		engine: engine,
		rng:    rng,
	}
}

// Assemble builds and renders one montage. The decoder cache lives and dies
// with this call: every decoder opened here is closed before return, on
// success and on failure alike.
func (a *Assembler) Assemble(ctx context.Context, videoPaths []string, audioPath string, events []subtitle.Event, styles map[string]subtitle.Style, opts Options) (*Timeline, error) {
	if len(events) == 0 {
		return nil, ErrNoEvents
	}

	sources := a.probePool(ctx, videoPaths)
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	targetFPS := sources[0].FrameRate
	targetW, targetH := sources[0].Width, sources[0].Height
	a.logger.Info().
		Float64("fps", targetFPS).
		Int("width", targetW).
		Int("height", targetH).
		Msg("target format chosen")

	decoders := make(map[string]Decoder)
	defer func() {
		for path, dec := range decoders {
			if err := dec.Close(); err != nil {
				a.logger.Warn().Str("source", path).Err(err).Msg("decoder close failed")
			}
		}
	}()

	var segments []*Segment
	var captions []*Caption
	montageTime := 0.0

	for i, ev := range events {
		segStart := ev.Start
		segDur := ev.Duration

		if opts.MaxDuration > 0 && segStart >= opts.MaxDuration {
			a.logger.Info().Float64("max_duration", opts.MaxDuration).Int("event", i).Msg("duration ceiling reached")
			break
		}
		if opts.MaxDuration > 0 && segStart+segDur > opts.MaxDuration {
			segDur = opts.MaxDuration - segStart
		}
		if segDur <= noiseThreshold {
			continue
		}

		if seg := a.buildSegment(ctx, sources, decoders, targetW, targetH, segStart, segDur); seg != nil {
			segments = append(segments, seg)
		}

		if overlay := a.buildCaption(ev, styles, segStart, segDur); overlay != nil {
			captions = append(captions, overlay)
		}

		if end := segStart + segDur; end > montageTime {
			montageTime = end
		}
	}

	if opts.MinDuration > 0 && montageTime < opts.MinDuration {
		return nil, fmt.Errorf("%w: %.2fs < %.2fs", ErrTooShort, montageTime, opts.MinDuration)
	}
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}

	a.logger.Info().
		Int("segments", len(segments)).
		Int("captions", len(captions)).
		Float64("duration", montageTime).
		Msg("timeline assembled")

	tl := &Timeline{
		Segments:  segments,
		Captions:  captions,
		AudioPath: audioPath,
		Duration:  montageTime,
		Width:     targetW,
		Height:    targetH,
		FrameRate: targetFPS,
	}

	if err := a.engine.Render(ctx, tl, opts.OutputPath); err != nil {
		return nil, fmt.Errorf("render failed: %w", err)
	}
	return tl, nil
}

// probePool probes every candidate file, keeping the usable ones
func (a *Assembler) probePool(ctx context.Context, videoPaths []string) []*SourceInfo {
	var usable []*SourceInfo
	for _, path := range videoPaths {
		info, err := a.engine.Probe(ctx, path)
		if err != nil {
			a.logger.Warn().Str("source", filepath.Base(path)).Err(err).Msg("probe failed, source excluded")
			continue
		}
		if info.Duration <= minSourceDuration {
			a.logger.Warn().Str("source", filepath.Base(path)).Float64("duration", info.Duration).Msg("source too short, excluded")
			continue
		}
		if info.FrameRate <= 0 {
			info.FrameRate = fallbackFrameRate
		}
		usable = append(usable, info)
	}
	a.logger.Info().Int("usable", len(usable)).Int("candidates", len(videoPaths)).Msg("video pool probed")
	return usable
}

// buildSegment picks a random source and carves a random excerpt of exactly
// the slot duration. Any failure is logged and the event simply contributes
// no video segment.
func (a *Assembler) buildSegment(ctx context.Context, sources []*SourceInfo, decoders map[string]Decoder, targetW, targetH int, segStart, segDur float64) *Segment {
	src := sources[a.rng.Intn(len(sources))]

	dec, ok := decoders[src.Path]
	if !ok {
		var err error
		dec, err = a.engine.OpenDecoder(ctx, src.Path, targetW, targetH)
		if err != nil {
			a.logger.Warn().Str("source", filepath.Base(src.Path)).Err(err).Msg("decoder open failed")
			return nil
		}
		decoders[src.Path] = dec
	}

	// The open handle's metadata is authoritative for the offset range
	offset := 0.0
	if maxOffset := dec.Info().Duration - segDur; maxOffset > 0 {
		offset = a.rng.Float64() * maxOffset
	}

	seg, err := dec.Excerpt(offset, segDur)
	if err != nil {
		a.logger.Warn().Str("source", filepath.Base(src.Path)).Err(err).Msg("excerpt failed")
		return nil
	}
	seg.Start = segStart

	a.logger.Debug().
		Str("source", filepath.Base(src.Path)).
		Float64("offset", seg.Offset).
		Float64("at", segStart).
		Float64("duration", segDur).
		Msg("segment placed")
	return seg
}

// buildCaption resolves the event's style, strips formatting tags and builds
// the positioned overlay. Events whose text is empty after tag stripping
// produce no caption; caption construction failures are non-fatal.
func (a *Assembler) buildCaption(ev subtitle.Event, styles map[string]subtitle.Style, segStart, segDur float64) *Caption {
	style := subtitle.Resolve(styles, ev.StyleName)

	text := strings.TrimSpace(subtitle.StripTags(ev.Text))
	if text == "" {
		if strings.TrimSpace(ev.Text) != "" {
			a.logger.Debug().Float64("at", segStart).Msg("event text was tags only, no caption")
		}
		return nil
	}

	hAlign, vAlign := subtitle.AlignmentOf(style.Alignment)
	overlay, err := a.engine.BuildCaption(Caption{
		Text:     text,
		Start:    segStart,
		Duration: segDur,
		Font:     style.FontName,
		Size:     style.FontSize,
		Color:    subtitle.ColorOf(style.PrimaryColor),
		HAlign:   hAlign,
		VAlign:   vAlign,
	})
	if err != nil {
		a.logger.Warn().Float64("at", segStart).Err(err).Msg("caption build failed, event keeps its slot")
		return nil
	}

	a.logger.Debug().
		Str("text", truncate(text, 20)).
		Str("font", style.FontName).
		Float64("size", style.FontSize).
		Msg("caption placed")
	return overlay
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
