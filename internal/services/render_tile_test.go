package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minutes(m float64) *time.Duration {
	d := time.Duration(m * float64(time.Minute))
	return &d
}

func decodeTile(t *testing.T, b []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	return img
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestTileColor(t *testing.T) {
	tests := []struct {
		name string
		in   *time.Duration
		want color.RGBA
	}{
		{"no route", nil, color.RGBA{0, 0, 255, 255}},
		{"zero", minutes(0), color.RGBA{0, 255, 0, 255}},
		{"half hour", minutes(30), color.RGBA{127, 127, 0, 255}},
		{"25 min", minutes(25), color.RGBA{106, 148, 0, 255}},
		{"truncates seconds", minutes(25.9), color.RGBA{106, 148, 0, 255}},
		{"one hour", minutes(60), color.RGBA{255, 0, 0, 255}},
		{"capped", minutes(240), color.RGBA{255, 0, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TileColor(tt.in))
		})
	}
}

func TestTileLabel(t *testing.T) {
	assert.Equal(t, "N/A", TileLabel(nil))
	assert.Equal(t, "0 min", TileLabel(minutes(0.5)))
	assert.Equal(t, "25 min", TileLabel(minutes(25)))
	assert.Equal(t, "95 min", TileLabel(minutes(95)))
}

func TestRenderTileSizeAndBackground(t *testing.T) {
	for _, size := range []int{64, 128, 200, 256} {
		b, err := RenderTile(size, minutes(25))
		require.NoError(t, err)

		img := decodeTile(t, b)
		assert.Equal(t, image.Rect(0, 0, size, size), img.Bounds())

		want := color.RGBA{106, 148, 0, 255}
		for _, p := range []image.Point{{0, 0}, {size - 1, 0}, {0, size - 1}, {size - 1, size - 1}} {
			assert.Equal(t, want, rgbaAt(img, p.X, p.Y), "size %d corner %v", size, p)
		}
	}
}

func TestRenderTileNoRouteIsBlue(t *testing.T) {
	b, err := RenderTile(128, nil)
	require.NoError(t, err)

	img := decodeTile(t, b)
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, rgbaAt(img, 0, 0))
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, rgbaAt(img, 127, 127))
}

func TestRenderTileDrawsCenteredLabel(t *testing.T) {
	b, err := RenderTile(128, minutes(25))
	require.NoError(t, err)
	img := decodeTile(t, b)

	bg := color.RGBA{106, 148, 0, 255}
	var minX, minY, maxX, maxY = 128, 128, -1, -1
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			if rgbaAt(img, x, y) == bg {
				continue
			}
			minX, minY = min(minX, x), min(minY, y)
			maxX, maxY = max(maxX, x), max(maxY, y)
		}
	}

	require.GreaterOrEqual(t, maxX, 0, "label was not drawn")
	// Ink box is centered to within a couple of pixels.
	assert.InDelta(t, 128-1-maxX, minX, 3)
	assert.InDelta(t, 128-1-maxY, minY, 3)
}

func TestRenderTileMark(t *testing.T) {
	plain, err := RenderTile(128, minutes(10))
	require.NoError(t, err)
	marked, err := RenderTile(128, minutes(10), RenderOptions{Mark: true})
	require.NoError(t, err)

	assert.NotEqual(t, plain, marked)
}

func TestRenderTileRejectsInvalidSize(t *testing.T) {
	_, err := RenderTile(0, nil)
	assert.Error(t, err)
}
