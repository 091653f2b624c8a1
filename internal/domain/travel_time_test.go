package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTravelTimeValidate(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	require.NoError(t, TravelTime{}.Validate())
	require.NoError(t, DepartingAt(now).Validate())
	require.NoError(t, ArrivingBy(now).Validate())

	both := TravelTime{DepartAt: &now, ArriveBy: &now}
	require.ErrorIs(t, both.Validate(), ErrConflictingTravelTime)
}

func TestTravelTimeMoment(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	_, _, ok := TravelTime{}.Moment()
	assert.False(t, ok)

	got, arrival, ok := ArrivingBy(now).Moment()
	assert.True(t, ok)
	assert.True(t, arrival)
	assert.Equal(t, now, got)

	got, arrival, ok = DepartingAt(now).Moment()
	assert.True(t, ok)
	assert.False(t, arrival)
	assert.Equal(t, now, got)
}

func TestNextMondayAt(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "wednesday",
			now:  time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC),
			want: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "monday goes to the following week",
			now:  time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
			want: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday",
			now:  time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC),
			want: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextMondayAt(tc.now, 9, 0))
		})
	}
}
