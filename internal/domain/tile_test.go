package domain

import (
	"testing"

	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTilesPerAxis(t *testing.T) {
	assert.Equal(t, 1.0, TilesPerAxis(0, 256))
	assert.Equal(t, 2.0, TilesPerAxis(0, 128))
	assert.Equal(t, 4096.0, TilesPerAxis(10, 64))
	assert.InDelta(t, 1.3333333, TilesPerAxis(0, 192), 1e-6)
}

func TestTileCenterZoomZero(t *testing.T) {
	c := TileCenter(0, 0, 0, 256)

	assert.InDelta(t, 0, c.Lat, 1e-9)
	assert.InDelta(t, 0, c.Lng, 1e-9)
}

func TestTileCenterStaysInsideWorld(t *testing.T) {
	sizes := []int{64, 100, 128, 192, 256}

	for _, size := range sizes {
		for zoom := 0; zoom <= 18; zoom += 3 {
			last := MaxTileIndex(zoom, size)
			for _, x := range []int{0, last / 2, last} {
				for _, y := range []int{0, last / 3, last} {
					c := TileCenter(x, y, zoom, size)
					require.NoError(t, c.Validate(), "size=%d z=%d x=%d y=%d", size, zoom, x, y)
				}
			}
		}
	}
}

func TestTileCenterInsideTileEdges(t *testing.T) {
	cases := []TileIndex{
		{X: 0, Y: 0, Zoom: 0, TileSizePixels: 256},
		{X: 1, Y: 1, Zoom: 0, TileSizePixels: 128},
		{X: 512, Y: 340, Zoom: 10, TileSizePixels: 128},
		{X: 8500, Y: 5400, Zoom: 14, TileSizePixels: 256},
		{X: 3, Y: 2, Zoom: 2, TileSizePixels: 100},
		{X: 1023, Y: 0, Zoom: 9, TileSizePixels: 128},
	}

	for _, tile := range cases {
		c := tile.Center()
		b := tile.Bound()

		assert.GreaterOrEqual(t, c.Lat, b.Bottom(), "%+v", tile)
		assert.LessOrEqual(t, c.Lat, b.Top(), "%+v", tile)
		assert.GreaterOrEqual(t, c.Lng, b.Left(), "%+v", tile)
		assert.LessOrEqual(t, c.Lng, b.Right(), "%+v", tile)

		assert.Equal(t, tile, TileFor(c, tile.Zoom, tile.TileSizePixels))
	}
}

func TestTileEdgesMatchMaptile(t *testing.T) {
	tiles := []maptile.Tile{
		maptile.New(0, 0, 0),
		maptile.New(1, 0, 1),
		maptile.New(34, 21, 6),
		maptile.New(8500, 5400, 14),
	}

	for _, mt := range tiles {
		want := mt.Bound()
		got := TileEdges(int(mt.X), int(mt.Y), int(mt.Z), 256)

		assert.InDelta(t, want.Left(), got.Left(), 1e-9)
		assert.InDelta(t, want.Right(), got.Right(), 1e-9)
		assert.InDelta(t, want.Top(), got.Top(), 1e-9)
		assert.InDelta(t, want.Bottom(), got.Bottom(), 1e-9)
	}
}

func TestTileIndexValidate(t *testing.T) {
	cases := []struct {
		name    string
		tile    TileIndex
		wantErr bool
	}{
		{name: "zoom zero", tile: TileIndex{Zoom: 0, TileSizePixels: 256}},
		{name: "small tiles", tile: TileIndex{X: 7, Y: 7, Zoom: 1, TileSizePixels: 64}},
		{name: "fractional grid last column", tile: TileIndex{X: 1, Y: 1, Zoom: 0, TileSizePixels: 160}},
		{name: "fractional grid overhang", tile: TileIndex{X: 1, Zoom: 0, TileSizePixels: 192}, wantErr: true},
		{name: "negative zoom", tile: TileIndex{Zoom: -1, TileSizePixels: 256}, wantErr: true},
		{name: "tile too small", tile: TileIndex{TileSizePixels: 32}, wantErr: true},
		{name: "tile too big", tile: TileIndex{TileSizePixels: 512}, wantErr: true},
		{name: "x out of range", tile: TileIndex{X: 2, Zoom: 1, TileSizePixels: 256}, wantErr: true},
		{name: "negative y", tile: TileIndex{Y: -1, Zoom: 3, TileSizePixels: 256}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.tile.Validate()
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidTile)
				return
			}
			require.NoError(t, err)
		})
	}
}
