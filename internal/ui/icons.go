package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/shini4i/nettraffic/internal/indicator"
)

// Icon dimensions for system tray.
const iconSize = 22

// transparentIconPNG is shown while the indicator is hidden; system
// trays cannot truly unmap an item.
var transparentIconPNG []byte

func init() {
	transparentIconPNG = encodePNG(image.NewRGBA(image.Rect(0, 0, iconSize, iconSize)))
}

type iconKey struct {
	mode indicator.Mode
	tint indicator.Tint
}

var (
	iconCacheMu sync.Mutex
	iconCache   = map[iconKey][]byte{}
)

// iconFor returns the PNG icon for the given display mode and tint,
// generating and caching it on first use.
func iconFor(mode indicator.Mode, tint indicator.Tint) []byte {
	key := iconKey{mode: mode, tint: tint}

	iconCacheMu.Lock()
	defer iconCacheMu.Unlock()

	if data, ok := iconCache[key]; ok {
		return data
	}
	data := generateTrafficIcon(mode, tintToRGBA(tint))
	iconCache[key] = data
	return data
}

// tintToRGBA unpacks an ARGB tint into a color.
func tintToRGBA(t indicator.Tint) color.RGBA {
	return color.RGBA{
		A: uint8(t >> 24),
		R: uint8(t >> 16),
		G: uint8(t >> 8),
		B: uint8(t),
	}
}

// generateTrafficIcon draws the arrow icon for a display mode. Upload
// and download get a single full-height arrow, bidirectional traffic a
// stacked pair, and idle the same pair dimmed.
func generateTrafficIcon(mode indicator.Mode, c color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))

	dimmed := c
	dimmed.A /= 3

	switch mode {
	case indicator.ModeUpload:
		drawArrowUp(img, 3, 19, c)
	case indicator.ModeDownload:
		drawArrowDown(img, 3, 19, c)
	case indicator.ModeBoth:
		drawArrowUp(img, 1, 10, c)
		drawArrowDown(img, 12, 21, c)
	default:
		drawArrowUp(img, 1, 10, dimmed)
		drawArrowDown(img, 12, 21, dimmed)
	}

	return encodePNG(img)
}

// drawArrowUp draws an upward arrow spanning rows top through bottom.
func drawArrowUp(img *image.RGBA, top, bottom int, c color.RGBA) {
	mid := iconSize / 2
	headHeight := (bottom - top) / 2

	// Triangular head.
	for dy := 0; dy <= headHeight; dy++ {
		for x := mid - dy; x <= mid+dy; x++ {
			img.Set(x, top+dy, c)
		}
	}
	// Stem.
	for y := top + headHeight; y <= bottom; y++ {
		for x := mid - 2; x <= mid+2; x++ {
			img.Set(x, y, c)
		}
	}
}

// drawArrowDown draws a downward arrow spanning rows top through bottom.
func drawArrowDown(img *image.RGBA, top, bottom int, c color.RGBA) {
	mid := iconSize / 2
	headHeight := (bottom - top) / 2

	// Stem.
	for y := top; y <= bottom-headHeight; y++ {
		for x := mid - 2; x <= mid+2; x++ {
			img.Set(x, y, c)
		}
	}
	// Triangular head.
	for dy := 0; dy <= headHeight; dy++ {
		for x := mid - (headHeight - dy); x <= mid+(headHeight-dy); x++ {
			img.Set(x, bottom-headHeight+dy, c)
		}
	}
}

func encodePNG(img *image.RGBA) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
