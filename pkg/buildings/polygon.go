// Package buildings reconstructs building footprints from the flat element
// list of an Overpass response.
package buildings

import (
	"github.com/twpayne/go-geom"

	"github.com/NERVsystems/osmsurvey/pkg/geo"
)

// SRID of every geometry produced here (WGS84).
const SRID = 4326

// Polygon is the footprint of one building way. Vertices keep the order of
// the way's node references, including the closing repeat of the first node.
type Polygon struct {
	WayID    int64
	Vertices []geo.Location
	Tags     map[string]string
}

// Geometry returns the footprint as a go-geom polygon with x=lon, y=lat.
func (p Polygon) Geometry() *geom.Polygon {
	flat := make([]float64, 0, len(p.Vertices)*2)
	for _, v := range p.Vertices {
		flat = append(flat, v.Longitude, v.Latitude)
	}
	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}).SetSRID(SRID)
}

// Bounds returns the bounding box of the footprint.
func (p Polygon) Bounds() geo.BoundingBox {
	return *geo.BoundsOf(p.Vertices)
}

// Center is the midpoint of the bounding box, used as the note position.
func (p Polygon) Center() geo.Location {
	b := p.Bounds()
	if b.IsEmpty() {
		return geo.Nowhere
	}
	return b.Center()
}
