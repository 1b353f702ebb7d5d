package survey

import (
	"sync"

	"github.com/NERVsystems/osmsurvey/pkg/geo"
)

// FetchState remembers where buildings were last fetched. A new state
// starts at geo.Nowhere so the first usable fix always fetches.
type FetchState struct {
	mu     sync.RWMutex
	origin geo.Location
}

// NewFetchState returns a state with no fetch yet.
func NewFetchState() *FetchState {
	return &FetchState{origin: geo.Nowhere}
}

// Origin returns the point of the last dispatched fetch.
func (s *FetchState) Origin() geo.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.origin
}

// SetOrigin records p as the last fetch origin.
func (s *FetchState) SetOrigin(p geo.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.origin = p
}

// DistanceFrom returns how far p is from the last fetch origin; +Inf before
// the first fetch.
func (s *FetchState) DistanceFrom(p geo.Location) float64 {
	return p.DistanceTo(s.Origin())
}
