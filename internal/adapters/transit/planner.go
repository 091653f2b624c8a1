package transit

import (
	"context"
	"time"
	"traveltime-tiles/internal/domain"
	"traveltime-tiles/internal/ports"
)

const (
	DefaultDepartureHour   = 9
	DefaultDepartureMinute = 0
)

// Planner turns a TransitPlanner into a DurationProvider by pinning every
// query to the same departure: next week's Monday morning.
type Planner struct {
	backend ports.TransitPlanner
	loc     *time.Location
	now     func() time.Time
}

type PlannerOption func(*Planner)

func WithLocation(loc *time.Location) PlannerOption {
	return func(p *Planner) {
		if loc != nil {
			p.loc = loc
		}
	}
}

func WithNow(now func() time.Time) PlannerOption {
	return func(p *Planner) { p.now = now }
}

func NewPlanner(backend ports.TransitPlanner, opts ...PlannerOption) *Planner {
	p := &Planner{backend: backend, loc: time.UTC, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Planner) Source() string { return p.backend.Source() }

// Departure returns the departure time used for queries issued now.
func (p *Planner) Departure() time.Time {
	return domain.NextMondayAt(p.now().In(p.loc), DefaultDepartureHour, DefaultDepartureMinute)
}

func (p *Planner) Lookup(ctx context.Context, origin, destination domain.GeoCoordinate) (*domain.DurationResult, error) {
	return p.backend.QueryBestDuration(ctx, origin, destination, domain.DepartingAt(p.Departure()))
}
