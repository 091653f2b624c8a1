package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoCoordinateKeyString(t *testing.T) {
	cases := []struct {
		name  string
		coord GeoCoordinate
		want  string
	}{
		{name: "integers", coord: GeoCoordinate{Lat: 51, Lng: 7}, want: "51.000000,7.000000"},
		{name: "short fraction", coord: GeoCoordinate{Lat: 51.5, Lng: 7.25}, want: "51.500000,7.250000"},
		{name: "truncates not rounds", coord: GeoCoordinate{Lat: 51.1234569, Lng: 7.9999999}, want: "51.123456,7.999999"},
		{name: "negative", coord: GeoCoordinate{Lat: -33.8688197, Lng: -151.2092955}, want: "-33.868819,-151.209295"},
		{name: "negative zero", coord: GeoCoordinate{Lat: -0.0000001, Lng: 0}, want: "0.000000,0.000000"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.coord.KeyString())
		})
	}
}

func TestGeoCoordinateKeyStringIgnoresJitterBeyondSixDecimals(t *testing.T) {
	a := GeoCoordinate{Lat: 51.4556781, Lng: 7.0116542}
	b := GeoCoordinate{Lat: 51.4556789, Lng: 7.0116548}

	assert.Equal(t, a.KeyString(), b.KeyString())
}

func TestGeoCoordinateValidate(t *testing.T) {
	cases := []struct {
		name    string
		coord   GeoCoordinate
		wantErr bool
	}{
		{name: "origin", coord: GeoCoordinate{}},
		{name: "corners", coord: GeoCoordinate{Lat: 90, Lng: -180}},
		{name: "lat too big", coord: GeoCoordinate{Lat: 90.1}, wantErr: true},
		{name: "lng too small", coord: GeoCoordinate{Lng: -180.5}, wantErr: true},
		{name: "lat NaN", coord: GeoCoordinate{Lat: math.NaN(), Lng: 7}, wantErr: true},
		{name: "lng NaN", coord: GeoCoordinate{Lat: 51.5, Lng: math.NaN()}, wantErr: true},
		{name: "lat infinite", coord: GeoCoordinate{Lat: math.Inf(1)}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.coord.Validate()
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidCoordinate)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseGeoCoordinate(t *testing.T) {
	c, err := ParseGeoCoordinate("51.5,7.0")
	require.NoError(t, err)
	assert.Equal(t, GeoCoordinate{Lat: 51.5, Lng: 7.0}, c)

	for _, in := range []string{"", "51.5", "abc,7", "51.5,x", "91,7", "NaN,7.0", "51.5,nan", "Inf,7"} {
		_, err := ParseGeoCoordinate(in)
		assert.ErrorIs(t, err, ErrInvalidCoordinate, "input %q", in)
	}
}
