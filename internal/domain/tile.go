package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

const (
	MinTileSizePixels = 64
	MaxTileSizePixels = 256

	referenceTileSize = 256
)

var ErrInvalidTile = errors.New("invalid tile")

// Slippy-map tile address. TileSizePixels scales the tile grid: smaller
// tiles mean more tiles per axis at the same zoom.
type TileIndex struct {
	X              int
	Y              int
	Zoom           int
	TileSizePixels int
}

// TilesPerAxis returns 2^zoom * 256/tileSizePixels. The value is fractional
// when the tile size does not divide 256.
func TilesPerAxis(zoom, tileSizePixels int) float64 {
	return math.Exp2(float64(zoom)) * (referenceTileSize / float64(tileSizePixels))
}

// MaxTileIndex is the largest x (or y) whose tile center lies inside the world.
func MaxTileIndex(zoom, tileSizePixels int) int {
	return int(math.Floor(TilesPerAxis(zoom, tileSizePixels) - 0.5))
}

func (t TileIndex) Validate() error {
	if t.Zoom < 0 {
		return fmt.Errorf("%w: zoom %d must be >= 0", ErrInvalidTile, t.Zoom)
	}
	if t.TileSizePixels < MinTileSizePixels || t.TileSizePixels > MaxTileSizePixels {
		return fmt.Errorf(
			"%w: tile size %d must be between %d and %d",
			ErrInvalidTile, t.TileSizePixels, MinTileSizePixels, MaxTileSizePixels,
		)
	}

	// On fractional grids the last row/column may hang over the world edge;
	// only tiles whose center is still on the map are addressable.
	last := MaxTileIndex(t.Zoom, t.TileSizePixels)
	if t.X < 0 || t.X > last || t.Y < 0 || t.Y > last {
		return fmt.Errorf("%w: x=%d y=%d outside [0, %d] at zoom %d", ErrInvalidTile, t.X, t.Y, last, t.Zoom)
	}

	return nil
}

// Center of the tile.
func (t TileIndex) Center() GeoCoordinate {
	return TileCenter(t.X, t.Y, t.Zoom, t.TileSizePixels)
}

// Bound of the tile as south/west/north/east edges.
func (t TileIndex) Bound() orb.Bound {
	return TileEdges(t.X, t.Y, t.Zoom, t.TileSizePixels)
}

// TileCenter projects the center of tile (x, y) back to a coordinate using
// the inverse web-mercator formulas.
func TileCenter(x, y, zoom, tileSizePixels int) GeoCoordinate {
	n := TilesPerAxis(zoom, tileSizePixels)

	relX := (float64(x) + 0.5) / n
	relY := (float64(y) + 0.5) / n

	return GeoCoordinate{
		Lat: mercatorToLat(math.Pi * (1 - 2*relY)),
		Lng: -180 + 360*relX,
	}
}

// TileEdges returns the tile's extent; Min is the south-west corner and
// Max the north-east corner.
func TileEdges(x, y, zoom, tileSizePixels int) orb.Bound {
	n := TilesPerAxis(zoom, tileSizePixels)

	lngUnit := 360 / n
	west := -180 + float64(x)*lngUnit
	east := west + lngUnit

	relY1 := float64(y) / n
	relY2 := relY1 + 1/n
	north := mercatorToLat(math.Pi * (1 - 2*relY1))
	south := mercatorToLat(math.Pi * (1 - 2*relY2))

	return orb.Bound{
		Min: orb.Point{west, south},
		Max: orb.Point{east, north},
	}
}

// TileFor returns the tile containing c (forward projection).
func TileFor(c GeoCoordinate, zoom, tileSizePixels int) TileIndex {
	n := TilesPerAxis(zoom, tileSizePixels)

	relX := (c.Lng + 180) / 360
	latRad := c.Lat * math.Pi / 180
	relY := (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2

	return TileIndex{
		X:              int(math.Floor(n * relX)),
		Y:              int(math.Floor(n * relY)),
		Zoom:           zoom,
		TileSizePixels: tileSizePixels,
	}
}

func mercatorToLat(mercatorY float64) float64 {
	return math.Atan(math.Sinh(mercatorY)) * 180 / math.Pi
}
