package transit

import (
	"context"
	"sync"
	"time"
	"traveltime-tiles/internal/domain"
)

type MockPair struct {
	From, To domain.GeoCoordinate
	Duration time.Duration
}

// MockProvider answers from a fixed table. Pairs that are not in the table
// have no route. It satisfies both ports.TransitPlanner and
// ports.DurationProvider.
type MockProvider struct {
	source string
	m      map[string]time.Duration
	err    error

	mu    sync.Mutex
	calls int
}

func NewMockProvider(source string, pairs []MockPair) *MockProvider {
	m := make(map[string]time.Duration, len(pairs))
	for _, p := range pairs {
		m[mockKey(p.From, p.To)] = p.Duration
	}
	return &MockProvider{source: source, m: m}
}

// FailWith makes every subsequent call return err.
func (p *MockProvider) FailWith(err error) *MockProvider {
	p.err = err
	return p
}

func (p *MockProvider) Source() string { return p.source }

func (p *MockProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *MockProvider) QueryBestDuration(
	ctx context.Context,
	origin domain.GeoCoordinate,
	destination domain.GeoCoordinate,
	when domain.TravelTime,
) (*domain.DurationResult, error) {
	if err := when.Validate(); err != nil {
		return nil, err
	}
	return p.Lookup(ctx, origin, destination)
}

func (p *MockProvider) Lookup(_ context.Context, origin, destination domain.GeoCoordinate) (*domain.DurationResult, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}

	d, ok := p.m[mockKey(origin, destination)]
	if !ok {
		return nil, nil
	}
	return domain.NewDurationResult(d, p.source), nil
}

func mockKey(from, to domain.GeoCoordinate) string {
	return from.KeyString() + "|" + to.KeyString()
}
