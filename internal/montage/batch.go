package montage

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/yarxhe/videocreate/internal/logging"
	"github.com/yarxhe/videocreate/internal/subtitle"
	"github.com/yarxhe/videocreate/pkg/util"
)

// BatchOptions configures one batch run
type BatchOptions struct {
	VideoFiles   []string
	AudioFiles   []string
	SubtitlePath string
	OutputDir    string
	Count        int
	MaxDuration  float64
	MinDuration  float64
}

// Batch repeats montage assembly with randomized audio selection and
// generated output names. One montage's failure never stops the batch.
type Batch struct {
	logger    zerolog.Logger
	assembler *Assembler
	rng       *rand.Rand
}

// NewBatch creates a batch driver. A zero seed derives one from the clock;
// any other value makes source, offset and audio selection reproducible.
func NewBatch(engine Engine, seed int64) *Batch {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	return &Batch{
		logger:    logging.WithComponent("batch"),
		assembler: NewAssembler(engine, rng),
		rng:       rng,
	}
}

// Run assembles opts.Count montages and reports how many succeeded
func (b *Batch) Run(ctx context.Context, opts BatchOptions) (succeeded, attempted int) {
	if len(opts.VideoFiles) == 0 || len(opts.AudioFiles) == 0 {
		b.logger.Error().Msg("empty video or audio pool, nothing to do")
		return 0, 0
	}

	events, styles := subtitle.Parse(opts.SubtitlePath)

	subsBase := util.BaseName(opts.SubtitlePath)
	batchStart := time.Now()

	for i := 1; i <= opts.Count; i++ {
		attempted++
		audio := opts.AudioFiles[b.rng.Intn(len(opts.AudioFiles))]

		name := fmt.Sprintf("montage_subs_%s_audio_%s_%s_%d.mp4",
			subsBase, util.BaseName(audio), time.Now().Format("150405"), i)
		outputPath := filepath.Join(opts.OutputDir, name)

		b.logger.Info().
			Int("montage", i).
			Int("of", opts.Count).
			Str("audio", filepath.Base(audio)).
			Str("output", name).
			Msg("assembling montage")

		start := time.Now()
		tl, err := b.assembler.Assemble(ctx, opts.VideoFiles, audio, events, styles, Options{
			MaxDuration: opts.MaxDuration,
			MinDuration: opts.MinDuration,
			OutputPath:  outputPath,
		})
		elapsed := time.Since(start)

		if err != nil {
			b.logger.Error().Int("montage", i).Err(err).Msg("montage failed")
			continue
		}

		succeeded++
		b.logger.Info().
			Int("montage", i).
			Float64("duration", tl.Duration).
			Dur("elapsed", elapsed.Round(10*time.Millisecond)).
			Msg("montage complete")
	}

	b.logger.Info().
		Int("succeeded", succeeded).
		Int("attempted", attempted).
		Dur("total", time.Since(batchStart).Round(10*time.Millisecond)).
		Msg("batch finished")
	return succeeded, attempted
}
