package cache

import (
	"context"
	"errors"
	"sync"
	"time"
	"traveltime-tiles/internal/domain"
)

var fixedNow = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

// countingProvider returns a fixed answer and counts invocations.
type countingProvider struct {
	mu     sync.Mutex
	calls  int
	result *domain.DurationResult
	err    error
}

func (p *countingProvider) Lookup(context.Context, domain.GeoCoordinate, domain.GeoCoordinate) (*domain.DurationResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.result, p.err
}

func (p *countingProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// fakeStore is an in-memory KeyValueStore whose reads and writes can be
// made to fail.
type fakeStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
	sets   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *fakeStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = append([]byte(nil), value...)
	s.ttls[key] = ttl
	return nil
}

func (s *fakeStore) Close() error { return nil }

var errStoreDown = errors.New("dial tcp 127.0.0.1:11211: connect: connection refused")

type fakeSearcher struct {
	calls     int
	locations []domain.Location
	err       error
}

func (f *fakeSearcher) Search(context.Context, string) ([]domain.Location, error) {
	f.calls++
	return f.locations, f.err
}
