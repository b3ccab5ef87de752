package ffmpeg

import (
	"fmt"
	"strings"

	"github.com/yarxhe/videocreate/internal/config"
	"github.com/yarxhe/videocreate/internal/montage"
	"github.com/yarxhe/videocreate/internal/subtitle"
	"github.com/yarxhe/videocreate/pkg/util"
)

// renderArgs builds the complete ffmpeg argument list for one timeline:
// distinct sources become inputs (each opened once, however many excerpts it
// supplies), the filter graph places every excerpt and caption, and the
// encoding profile closes it out.
func renderArgs(tl *montage.Timeline, audioDuration float64, enc config.EncodeConfig, margin int, outputPath string) []string {
	inputIndex := make(map[string]int)
	var inputs []string
	for _, seg := range tl.Segments {
		if _, ok := inputIndex[seg.Source.Path]; !ok {
			inputIndex[seg.Source.Path] = len(inputs)
			inputs = append(inputs, seg.Source.Path)
		}
	}
	audioIndex := len(inputs)

	var args []string
	for _, path := range inputs {
		args = append(args, "-i", path)
	}

	// Loop the audio enough times to cover the montage, then trim exact
	if tl.Duration > audioDuration {
		loops := int(tl.Duration / audioDuration)
		args = append(args, "-stream_loop", fmt.Sprintf("%d", loops))
	}
	args = append(args, "-i", tl.AudioPath)

	graph := buildGraph(tl, inputIndex, audioIndex, margin)

	args = append(args,
		"-filter_complex", graph,
		"-map", "[vout]",
		"-map", "[aout]",
		"-c:v", enc.VideoCodec,
		"-preset", enc.Preset,
		"-crf", fmt.Sprintf("%d", enc.CRF),
		"-c:a", enc.AudioCodec,
		"-b:a", enc.AudioBitrate,
		"-r", fmt.Sprintf("%.3f", tl.FrameRate),
		"-t", util.FormatSeconds(tl.Duration),
		outputPath,
	)
	return args
}

// buildGraph assembles the filter_complex description
func buildGraph(tl *montage.Timeline, inputIndex map[string]int, audioIndex, margin int) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("color=c=black:s=%dx%d:r=%.3f:d=%.3f[base]",
		tl.Width, tl.Height, tl.FrameRate, tl.Duration))

	for i, seg := range tl.Segments {
		lines = append(lines, segmentChain(seg, inputIndex[seg.Source.Path], tl.Width, tl.Height, i))
	}

	prev := "base"
	for i := range tl.Segments {
		out := fmt.Sprintf("v%d", i)
		lines = append(lines, fmt.Sprintf("[%s][seg%d]overlay=eof_action=pass[%s]", prev, i, out))
		prev = out
	}

	if len(tl.Captions) > 0 {
		var draws []string
		for _, c := range tl.Captions {
			draws = append(draws, drawtextFilter(c, margin))
		}
		lines = append(lines, fmt.Sprintf("[%s]%s[vout]", prev, strings.Join(draws, ",")))
	} else {
		lines = append(lines, fmt.Sprintf("[%s]null[vout]", prev))
	}

	lines = append(lines, fmt.Sprintf("[%d:a]atrim=duration=%.3f,asetpts=PTS-STARTPTS[aout]",
		audioIndex, tl.Duration))

	return strings.Join(lines, ";")
}

// segmentChain trims one excerpt, normalizes it to the target format and
// shifts it to its placement time
func segmentChain(seg *montage.Segment, input, width, height, i int) string {
	var b strings.Builder

	if seg.Hold {
		// Whole source, padded out to the slot by cloning the last frame
		fmt.Fprintf(&b, "[%d:v]trim=duration=%.3f", input, seg.Source.Duration)
	} else {
		fmt.Fprintf(&b, "[%d:v]trim=start=%.3f:duration=%.3f", input, seg.Offset, seg.Duration)
	}
	fmt.Fprintf(&b, ",setpts=PTS-STARTPTS,scale=%d:%d,setsar=1", width, height)

	if seg.Hold {
		if pad := seg.Duration - seg.Source.Duration; pad > 0 {
			fmt.Fprintf(&b, ",tpad=stop_mode=clone:stop_duration=%.3f", pad)
		}
	}

	fmt.Fprintf(&b, ",setpts=PTS+%.3f/TB[seg%d]", seg.Start, i)
	return b.String()
}

// drawtextFilter renders one caption at its anchor for its time window
func drawtextFilter(c *montage.Caption, margin int) string {
	var x, y string

	switch c.HAlign {
	case subtitle.AlignLeft:
		x = fmt.Sprintf("%d", margin)
	case subtitle.AlignRight:
		x = fmt.Sprintf("w-text_w-%d", margin)
	default:
		x = "(w-text_w)/2"
	}

	switch c.VAlign {
	case subtitle.AlignTop:
		y = fmt.Sprintf("%d", margin)
	case subtitle.AlignMiddle:
		y = "(h-text_h)/2"
	default:
		y = fmt.Sprintf("h-text_h-%d", margin)
	}

	return fmt.Sprintf("drawtext=text='%s':font='%s':fontsize=%d:fontcolor=0x%02X%02X%02X:x=%s:y=%s:enable='between(t,%.3f,%.3f)'",
		escapeDrawText(c.Text), escapeDrawText(c.Font), int(c.Size),
		c.Color.R, c.Color.G, c.Color.B,
		x, y, c.Start, c.Start+c.Duration)
}

// escapeDrawText escapes the characters that would terminate or confuse a
// quoted drawtext argument
func escapeDrawText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, `:`, `\:`)
	return s
}
