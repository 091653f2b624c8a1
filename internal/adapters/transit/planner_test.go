package transit

import (
	"context"
	"testing"
	"time"
	"traveltime-tiles/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPlanner struct {
	*MockProvider
	when domain.TravelTime
}

func (r *recordingPlanner) QueryBestDuration(
	ctx context.Context,
	origin domain.GeoCoordinate,
	destination domain.GeoCoordinate,
	when domain.TravelTime,
) (*domain.DurationResult, error) {
	r.when = when
	return r.MockProvider.QueryBestDuration(ctx, origin, destination, when)
}

func TestPlannerDepartsNextMondayMorning(t *testing.T) {
	cet := time.FixedZone("CET", 3600)

	backend := &recordingPlanner{MockProvider: NewMockProvider("vrr", []MockPair{
		{From: essen, To: bochum, Duration: 25 * time.Minute},
	})}
	// Wednesday evening UTC.
	now := time.Date(2026, 1, 7, 22, 30, 0, 0, time.UTC)
	p := NewPlanner(backend, WithLocation(cet), WithNow(func() time.Time { return now }))

	res, err := p.Lookup(context.Background(), essen, bochum)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 25*time.Minute, *res.Duration)

	require.NotNil(t, backend.when.DepartAt)
	assert.Nil(t, backend.when.ArriveBy)
	want := time.Date(2026, 1, 12, 9, 0, 0, 0, cet)
	assert.True(t, want.Equal(*backend.when.DepartAt), "got %s", backend.when.DepartAt)
	assert.Equal(t, "vrr", p.Source())
}

func TestPlannerPassesThroughNoRoute(t *testing.T) {
	p := NewPlanner(NewMockProvider("otp", nil))

	res, err := p.Lookup(context.Background(), essen, bochum)
	require.NoError(t, err)
	assert.Nil(t, res)
}
