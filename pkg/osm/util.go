package osm

import (
	"fmt"
	"net/http"
	"time"
)

const (
	// API endpoints
	OverpassBaseURL = "https://overpass-api.de/api/interpreter"
	NotesBaseURL    = "https://api.openstreetmap.org/api/0.6/notes"

	// DefaultUserAgent identifies the tool to OSM services as their usage
	// policies require.
	DefaultUserAgent = "osmsurvey/0.1.0"
)

// NewHTTPClient returns an HTTP client with pooled connections suited to the
// low request volume of a single surveyor.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// ValidateCoords validates latitude and longitude values
func ValidateCoords(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("invalid latitude: %f (must be between -90 and 90)", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("invalid longitude: %f (must be between -180 and 180)", lon)
	}
	return nil
}
