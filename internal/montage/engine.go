package montage

import (
	"context"
	"errors"

	"github.com/yarxhe/videocreate/internal/subtitle"
)

// Assembly-fatal failures. One montage attempt reports these and the batch
// driver moves on to the next attempt.
var (
	ErrNoEvents   = errors.New("no subtitle events")
	ErrNoSources  = errors.New("no usable source videos")
	ErrNoSegments = errors.New("no video segments produced")
	ErrTooShort   = errors.New("montage shorter than minimum duration")
)

// SourceInfo is a metadata snapshot of a candidate input video
type SourceInfo struct {
	Path      string
	Duration  float64
	FrameRate float64
	Width     int
	Height    int
}

// Segment is a placed video excerpt
type Segment struct {
	Source   *SourceInfo
	Offset   float64 // excerpt start within the source
	Start    float64 // placement start in the montage
	Duration float64
	Hold     bool // source shorter than the slot, last frame is held
}

// Caption is a positioned text element
type Caption struct {
	Text     string
	Start    float64
	Duration float64
	Font     string
	Size     float64
	Color    subtitle.RGB
	HAlign   subtitle.HAlign
	VAlign   subtitle.VAlign
}

// Timeline is one assembled montage, ready to render
type Timeline struct {
	Segments  []*Segment
	Captions  []*Caption
	AudioPath string
	Duration  float64
	Width     int
	Height    int
	FrameRate float64
}

// Engine is the media collaborator the assembler drives. Implementations
// own all decode, compositing and encoding concerns.
type Engine interface {
	// Probe reports a file's metadata without keeping it open
	Probe(ctx context.Context, path string) (*SourceInfo, error)

	// OpenDecoder prepares a source for repeated excerpting at the target
	// frame dimensions. The caller must Close the decoder.
	OpenDecoder(ctx context.Context, path string, width, height int) (Decoder, error)

	// BuildCaption validates and finalizes a caption overlay
	BuildCaption(c Caption) (*Caption, error)

	// Render writes the timeline to outputPath
	Render(ctx context.Context, tl *Timeline, outputPath string) error
}

// Decoder is an open source-video handle
type Decoder interface {
	// Info returns the source metadata the decoder was opened with
	Info() *SourceInfo

	// Excerpt carves a slice of the source. If the source is shorter than
	// length the whole source is used with its last frame held.
	Excerpt(offset, length float64) (*Segment, error)

	Close() error
}
