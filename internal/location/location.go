package location

import (
	"sync"
)

// Coordinates is an optional geographic position. Either field may be
// nil when the browser or operator did not provide it.
type Coordinates struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Empty reports whether neither coordinate is known.
func (c Coordinates) Empty() bool {
	return c.Latitude == nil && c.Longitude == nil
}

// Valid reports whether every known coordinate is within range.
func (c Coordinates) Valid() bool {
	if c.Latitude != nil && (*c.Latitude < -90 || *c.Latitude > 90) {
		return false
	}
	if c.Longitude != nil && (*c.Longitude < -180 || *c.Longitude > 180) {
		return false
	}
	return true
}

// Float returns a pointer to v, for building Coordinates literals.
func Float(v float64) *float64 { return &v }

// Tracker holds the latest coordinates reported for a session.
type Tracker struct {
	mu     sync.RWMutex
	coords Coordinates
}

// Set records new coordinates, replacing any previous value.
func (t *Tracker) Set(c Coordinates) {
	t.mu.Lock()
	t.coords = c
	t.mu.Unlock()
}

// Get returns the latest coordinates, which may be empty.
func (t *Tracker) Get() Coordinates {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.coords
}
