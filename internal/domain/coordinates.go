package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Immutable geographic coordinate in degrees (latitude first).
type GeoCoordinate struct {
	Lat float64
	Lng float64
}

func (c GeoCoordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return fmt.Errorf("%w: NaN in (%v, %v)", ErrInvalidCoordinate, c.Lat, c.Lng)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidCoordinate, c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidCoordinate, c.Lng)
	}
	return nil
}

// KeyString renders "lat,lng" with both values truncated to six decimals,
// so that float jitter below ~0.1m maps to the same string.
func (c GeoCoordinate) KeyString() string {
	return truncate6(c.Lat) + "," + truncate6(c.Lng)
}

func (c GeoCoordinate) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Lat, c.Lng)
}

// ParseGeoCoordinate parses "lat,lng".
func ParseGeoCoordinate(s string) (GeoCoordinate, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return GeoCoordinate{}, fmt.Errorf("%w: expected \"lat,lng\", got %q", ErrInvalidCoordinate, s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return GeoCoordinate{}, fmt.Errorf("%w: latitude %q: %v", ErrInvalidCoordinate, latStr, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return GeoCoordinate{}, fmt.Errorf("%w: longitude %q: %v", ErrInvalidCoordinate, lngStr, err)
	}

	c := GeoCoordinate{Lat: lat, Lng: lng}
	if err := c.Validate(); err != nil {
		return GeoCoordinate{}, err
	}
	return c, nil
}

// truncate6 cuts the shortest decimal representation after six fractional
// digits. Working on the string avoids x*1e6 landing just below an integer.
func truncate6(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)

	intPart, frac, _ := strings.Cut(s, ".")
	if len(frac) > 6 {
		frac = frac[:6]
	}
	frac += strings.Repeat("0", 6-len(frac))

	out := intPart + "." + frac
	if out == "-0.000000" {
		return "0.000000"
	}
	return out
}
