package console

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/NERVsystems/osmsurvey/pkg/buildings"
	"github.com/NERVsystems/osmsurvey/pkg/coords"
	"github.com/NERVsystems/osmsurvey/pkg/geo"
	"github.com/NERVsystems/osmsurvey/pkg/survey"
)

type shape struct {
	polygon buildings.Polygon
	style   survey.Style
	onClick func()
}

// ShapeInfo describes a drawn shape for listing.
type ShapeInfo struct {
	ID       survey.ShapeID
	WayID    int64
	Style    survey.Style
	Center   geo.Location
	Distance float64 // metres from the view centre, +Inf before the first fix
}

// Surface is an in-memory survey.MapSurface. Shape IDs start at 1 and are
// never reused, also after a shape is removed.
type Surface struct {
	mu     sync.Mutex
	shapes []*shape
	center geo.Location
	zoom   int
}

// NewSurface returns an empty surface with no view centre.
func NewSurface() *Surface {
	return &Surface{center: geo.Nowhere}
}

// AddShape implements survey.MapSurface.
func (s *Surface) AddShape(p buildings.Polygon, style survey.Style, onClick func()) survey.ShapeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shapes = append(s.shapes, &shape{polygon: p, style: style, onClick: onClick})
	return survey.ShapeID(len(s.shapes))
}

// SetStyle implements survey.MapSurface.
func (s *Surface) SetStyle(id survey.ShapeID, style survey.Style) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh := s.lookup(id); sh != nil {
		sh.style = style
	}
}

// CenterOn implements survey.MapSurface.
func (s *Surface) CenterOn(p geo.Location, zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.center = p
	s.zoom = zoom
}

// RemoveShape implements survey.MapSurface.
func (s *Surface) RemoveShape(id survey.ShapeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookup(id) != nil {
		s.shapes[id-1] = nil
	}
}

// View returns the current view centre and zoom.
func (s *Surface) View() (geo.Location, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.center, s.zoom
}

func (s *Surface) lookup(id survey.ShapeID) *shape {
	if id < 1 || int(id) > len(s.shapes) {
		return nil
	}
	return s.shapes[id-1]
}

// Shapes lists every drawn shape in drawing order.
func (s *Surface) Shapes() []ShapeInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ShapeInfo, 0, len(s.shapes))
	for i, sh := range s.shapes {
		if sh == nil {
			continue
		}
		c := sh.polygon.Center()
		out = append(out, ShapeInfo{
			ID:       survey.ShapeID(i + 1),
			WayID:    sh.polygon.WayID,
			Style:    sh.style,
			Center:   c,
			Distance: c.DistanceTo(s.center),
		})
	}
	return out
}

// ClickHandler returns the click callback of a shape.
func (s *Surface) ClickHandler(id survey.ShapeID) (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh := s.lookup(id)
	if sh == nil || sh.onClick == nil {
		return nil, false
	}
	return sh.onClick, true
}

// FeatureCollection renders the drawn shapes as GeoJSON features carrying
// their way ID and style.
func (s *Surface) FeatureCollection() *geojson.FeatureCollection {
	s.mu.Lock()
	defer s.mu.Unlock()

	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(s.shapes))}
	for i, sh := range s.shapes {
		if sh == nil {
			continue
		}
		props := map[string]any{
			"shape":  i + 1,
			"way_id": sh.polygon.WayID,
			"style":  sh.style.String(),
			"stroke": sh.style.Color(),
		}
		for k, v := range sh.polygon.Tags {
			props["tag:"+k] = v
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         fmt.Sprintf("way/%d", sh.polygon.WayID),
			Geometry:   sh.polygon.Geometry(),
			Properties: props,
		})
	}
	return fc
}

// WriteGeoJSON writes the FeatureCollection to w.
func (s *Surface) WriteGeoJSON(w io.Writer) error {
	data, err := json.Marshal(s.FeatureCollection())
	if err != nil {
		return fmt.Errorf("encode shapes: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write shapes: %w", err)
	}
	return nil
}

// mgrs formats p for listings; an empty string when p has no MGRS form.
func mgrs(p geo.Location) string {
	s, err := coords.ToMGRS(p, 5)
	if err != nil {
		return ""
	}
	return s
}
