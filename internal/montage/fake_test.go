package montage

import (
	"context"
	"errors"
	"fmt"
)

// fakeEngine is an in-memory media engine for assembler tests. It tracks
// decoder open/close balance and records rendered timelines.
type fakeEngine struct {
	sources map[string]SourceInfo

	opens     int
	closes    int
	rendered  []*Timeline
	outputs   []string
	renderErr error

	captionErr  error
	excerptErrs map[string]error

	// duration reported by an open decoder when it differs from the probe
	decoderDurations map[string]float64
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		sources:          make(map[string]SourceInfo),
		excerptErrs:      make(map[string]error),
		decoderDurations: make(map[string]float64),
	}
}

func (f *fakeEngine) addSource(path string, duration float64, fps float64, w, h int) {
	f.sources[path] = SourceInfo{Path: path, Duration: duration, FrameRate: fps, Width: w, Height: h}
}

func (f *fakeEngine) Probe(_ context.Context, path string) (*SourceInfo, error) {
	info, ok := f.sources[path]
	if !ok {
		return nil, fmt.Errorf("probe %s: no such source", path)
	}
	copied := info
	return &copied, nil
}

func (f *fakeEngine) OpenDecoder(_ context.Context, path string, width, height int) (Decoder, error) {
	info, ok := f.sources[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such source", path)
	}
	f.opens++
	copied := info
	if d, ok := f.decoderDurations[path]; ok {
		copied.Duration = d
	}
	return &fakeDecoder{engine: f, info: &copied}, nil
}

func (f *fakeEngine) BuildCaption(c Caption) (*Caption, error) {
	if f.captionErr != nil {
		return nil, f.captionErr
	}
	return &c, nil
}

func (f *fakeEngine) Render(_ context.Context, tl *Timeline, outputPath string) error {
	if f.renderErr != nil {
		return f.renderErr
	}
	f.rendered = append(f.rendered, tl)
	f.outputs = append(f.outputs, outputPath)
	return nil
}

func (f *fakeEngine) balanced() bool {
	return f.opens == f.closes
}

type fakeDecoder struct {
	engine *fakeEngine
	info   *SourceInfo
	closed bool
}

func (d *fakeDecoder) Info() *SourceInfo {
	return d.info
}

func (d *fakeDecoder) Excerpt(offset, length float64) (*Segment, error) {
	if d.closed {
		return nil, errors.New("decoder closed")
	}
	if err := d.engine.excerptErrs[d.info.Path]; err != nil {
		return nil, err
	}
	hold := false
	if offset+length > d.info.Duration {
		offset = 0
		hold = true
	}
	return &Segment{Source: d.info, Offset: offset, Duration: length, Hold: hold}, nil
}

func (d *fakeDecoder) Close() error {
	if !d.closed {
		d.closed = true
		d.engine.closes++
	}
	return nil
}
