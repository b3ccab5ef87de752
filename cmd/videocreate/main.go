package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yarxhe/videocreate/internal/config"
	"github.com/yarxhe/videocreate/internal/ffmpeg"
	"github.com/yarxhe/videocreate/internal/logging"
	"github.com/yarxhe/videocreate/internal/montage"
	"github.com/yarxhe/videocreate/pkg/util"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "videocreate",
	Short: "videocreate - subtitle-driven video montage generator",
	Long:  "Batch-generates video montages from a folder of clips, timed and captioned by a subtitle file, with a random background track.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

var (
	videoDir     string
	audioDir     string
	subtitleFile string
	outputDir    string
	count        int
	maxDuration  float64
	minDuration  float64
	seed         int64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate montages from a subtitle file and media folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		videoFiles := util.FindFiles(videoDir, cfg.VideoExtensions)
		if len(videoFiles) == 0 {
			return fmt.Errorf("no video files found in %s", videoDir)
		}
		audioFiles := util.FindFiles(audioDir, cfg.AudioExtensions)
		if len(audioFiles) == 0 {
			return fmt.Errorf("no audio files found in %s", audioDir)
		}
		if !util.FileExists(subtitleFile) {
			return fmt.Errorf("subtitle file not found: %s", subtitleFile)
		}
		if err := util.EnsureDir(outputDir); err != nil {
			return fmt.Errorf("cannot create output directory %s: %w", outputDir, err)
		}

		log.Info().
			Int("videos", len(videoFiles)).
			Int("audio", len(audioFiles)).
			Str("subtitles", subtitleFile).
			Msg("inputs discovered")

		exec, err := ffmpeg.New(log.Logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.ProbePath, cfg.FFmpeg.Threads)
		if err != nil {
			return err
		}
		engine := ffmpeg.NewEngine(exec, cfg.Encode, cfg.Captions)

		batch := montage.NewBatch(engine, seed)
		succeeded, attempted := batch.Run(cmd.Context(), montage.BatchOptions{
			VideoFiles:   videoFiles,
			AudioFiles:   audioFiles,
			SubtitlePath: subtitleFile,
			OutputDir:    outputDir,
			Count:        count,
			MaxDuration:  maxDuration,
			MinDuration:  minDuration,
		})

		if succeeded == 0 {
			return fmt.Errorf("all %d montages failed", attempted)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the active configuration to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "./config.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		cfg := config.FromContext(cmd.Context())
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("cannot write config to %s: %w", path, err)
		}

		log.Info().Str("path", path).Msg("configuration written")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	generateCmd.Flags().StringVar(&videoDir, "video-dir", "", "folder with source video files")
	generateCmd.Flags().StringVar(&audioDir, "audio-dir", "", "folder with background audio files")
	generateCmd.Flags().StringVar(&subtitleFile, "subs", "", "subtitle file defining the montage timing")
	generateCmd.Flags().StringVar(&outputDir, "output-dir", "", "folder for rendered montages")
	generateCmd.Flags().IntVarP(&count, "count", "n", 1, "number of montages to generate")
	generateCmd.Flags().Float64Var(&maxDuration, "max-duration", 0, "maximum montage duration in seconds (0 = unbounded)")
	generateCmd.Flags().Float64Var(&minDuration, "min-duration", 0, "minimum montage duration in seconds (0 = unchecked)")
	generateCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")

	for _, flag := range []string{"video-dir", "audio-dir", "subs", "output-dir"} {
		_ = generateCmd.MarkFlagRequired(flag)
	}

	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(configCmd)
}
