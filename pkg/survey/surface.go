package survey

import (
	"context"
	"time"

	"github.com/NERVsystems/osmsurvey/pkg/buildings"
	"github.com/NERVsystems/osmsurvey/pkg/geo"
	"github.com/NERVsystems/osmsurvey/pkg/osm"
)

// Fix is one position reported by a LocationProvider.
type Fix struct {
	Point     geo.Location
	Accuracy  float64 // metres
	Timestamp time.Time
}

// PositionOptions are passed to every position request.
type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// LocationProvider answers one-shot position requests. Failures should be
// *LocationError values.
type LocationProvider interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (Fix, error)
}

// BuildingSource runs an Overpass query.
type BuildingSource interface {
	Query(ctx context.Context, query string) ([]osm.Element, error)
}

// NoteSubmitter publishes a note.
type NoteSubmitter interface {
	CreateNote(ctx context.Context, note osm.Note) error
}

// Notifier shows a message to the surveyor.
type Notifier interface {
	Notify(msg string)
}

// ShapeID identifies a shape on a MapSurface.
type ShapeID int

// Style is the visual state of a building shape.
type Style int

const (
	StyleNeedsAttention Style = iota
	StyleInProgress
	StyleConfirmed
)

// Color is the stroke colour the style is drawn with.
func (s Style) Color() string {
	switch s {
	case StyleInProgress:
		return "orange"
	case StyleConfirmed:
		return "green"
	default:
		return "red"
	}
}

func (s Style) String() string {
	switch s {
	case StyleInProgress:
		return "in_progress"
	case StyleConfirmed:
		return "confirmed"
	default:
		return "needs_attention"
	}
}

// MapSurface draws building shapes. onClick is invoked on the survey loop
// each time the shape is clicked.
type MapSurface interface {
	AddShape(p buildings.Polygon, style Style, onClick func()) ShapeID
	SetStyle(id ShapeID, style Style)
	CenterOn(p geo.Location, zoom int)

	// RemoveShape takes a shape off the surface. Later calls with its ID
	// are ignored.
	RemoveShape(id ShapeID)
}
