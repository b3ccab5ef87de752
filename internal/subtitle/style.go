package subtitle

import (
	"strconv"
	"strings"
)

// RGB is a decoded color triple
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// White is the safe fallback color for any undecodable value
var White = RGB{255, 255, 255}

// HAlign is a horizontal anchor for caption placement
type HAlign string

// VAlign is a vertical anchor for caption placement
type VAlign string

const (
	AlignLeft   HAlign = "left"
	AlignCenter HAlign = "center"
	AlignRight  HAlign = "right"

	AlignTop    VAlign = "top"
	AlignMiddle VAlign = "center"
	AlignBottom VAlign = "bottom"
)

// ColorOf decodes a subtitle color value. The encoding is &H-prefixed hex in
// reversed byte order: AABBGGRR with alpha, or BBGGRR without. Alpha is
// discarded. Anything that does not decode yields white.
func ColorOf(encoded string) RGB {
	if !strings.HasPrefix(encoded, "&H") {
		return White
	}
	h := strings.ToUpper(encoded[2:])

	switch len(h) {
	case 8:
		r, err1 := strconv.ParseUint(h[6:8], 16, 8)
		g, err2 := strconv.ParseUint(h[4:6], 16, 8)
		b, err3 := strconv.ParseUint(h[2:4], 16, 8)
		if err1 == nil && err2 == nil && err3 == nil {
			return RGB{uint8(r), uint8(g), uint8(b)}
		}
	case 6:
		r, err1 := strconv.ParseUint(h[4:6], 16, 8)
		g, err2 := strconv.ParseUint(h[2:4], 16, 8)
		b, err3 := strconv.ParseUint(h[0:2], 16, 8)
		if err1 == nil && err2 == nil && err3 == nil {
			return RGB{uint8(r), uint8(g), uint8(b)}
		}
	}
	return White
}

// AlignmentOf maps a numeric keypad-style alignment code (1-9) to anchor
// values. Unrecognized codes fall back to bottom-center.
func AlignmentOf(code int) (HAlign, VAlign) {
	h := AlignCenter
	v := AlignBottom

	switch code {
	case 1, 4, 7:
		h = AlignLeft
	case 3, 6, 9:
		h = AlignRight
	}
	switch code {
	case 4, 5, 6:
		v = AlignMiddle
	case 7, 8, 9:
		v = AlignTop
	}
	return h, v
}
