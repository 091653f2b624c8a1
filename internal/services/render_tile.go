package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	// Durations at or above this many minutes render fully red.
	MaxColorMinutes = 60

	// Label size at the reference tile size, scaled linearly.
	labelPointSize    = 30
	referenceTileSize = 128

	naLabel = "N/A"
)

var NoRouteColor = color.RGBA{R: 0, G: 0, B: 255, A: 255}

type RenderOptions struct {
	// Mark appends "*" to the label.
	Mark bool
}

var loadFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// TileColor maps a duration onto a green to red ramp. Minutes are
// truncated and capped at MaxColorMinutes. A nil duration is blue.
func TileColor(d *time.Duration) color.RGBA {
	if d == nil {
		return NoRouteColor
	}
	minutes := int(d.Minutes())
	return rampColor(float64(minutes) / MaxColorMinutes)
}

func rampColor(t float64) color.RGBA {
	t = min(max(t, 0), 1)
	return color.RGBA{
		R: uint8(t * 255),
		G: uint8((1 - t) * 255),
		B: 0,
		A: 255,
	}
}

// TileLabel is "<m> min" for a known duration and "N/A" otherwise.
func TileLabel(d *time.Duration) string {
	if d == nil {
		return naLabel
	}
	return strconv.Itoa(int(d.Minutes())) + " min"
}

// RenderTile draws a square PNG tile filled with the duration color and
// labelled with the duration in minutes.
func RenderTile(tileSizePixels int, d *time.Duration, opts ...RenderOptions) ([]byte, error) {
	if tileSizePixels <= 0 {
		return nil, fmt.Errorf("render tile: invalid size %d", tileSizePixels)
	}

	var o RenderOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	img := image.NewRGBA(image.Rect(0, 0, tileSizePixels, tileSizePixels))
	draw.Draw(img, img.Bounds(), image.NewUniform(TileColor(d)), image.Point{}, draw.Src)

	label := TileLabel(d)
	if o.Mark {
		label += "*"
	}
	if err := drawLabel(img, label, tileSizePixels); err != nil {
		return nil, fmt.Errorf("render tile: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("render tile: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawLabel(img *image.RGBA, label string, size int) error {
	f, err := loadFont()
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(labelPointSize*size) / referenceTileSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("new face: %w", err)
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}

	// Center the ink bounds of the label, not its advance box.
	bounds, _ := d.BoundString(label)
	w := bounds.Max.X - bounds.Min.X
	h := bounds.Max.Y - bounds.Min.Y
	side := fixed.I(size)
	d.Dot = fixed.Point26_6{
		X: (side-w)/2 - bounds.Min.X,
		Y: (side-h)/2 - bounds.Min.Y,
	}
	d.DrawString(label)
	return nil
}
