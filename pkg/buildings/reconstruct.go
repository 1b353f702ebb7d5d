package buildings

import (
	"github.com/NERVsystems/osmsurvey/pkg/geo"
	"github.com/NERVsystems/osmsurvey/pkg/osm"
)

// MinVertices is the smallest vertex count a drawable footprint can have.
const MinVertices = 3

// Gap records a way dropped because one of its nodes was not in the response.
type Gap struct {
	WayID       int64
	MissingNode int64
}

// Result is the outcome of Reconstruct.
type Result struct {
	Polygons []Polygon

	// Gaps lists ways dropped for an unresolved node reference
	Gaps []Gap

	// Degenerate lists ways dropped for having fewer than MinVertices nodes
	Degenerate []int64
}

// Qualifies reports whether a way is an unaddressed building.
func Qualifies(e osm.Element) bool {
	return e.Type == osm.ElementWay && e.HasTag("building") && !e.HasTag("addr:housenumber")
}

// Reconstruct turns the elements of a building query into polygons. Nodes
// are indexed by ID first, so element order in the response does not matter.
// A way that references any node missing from elements is dropped whole.
func Reconstruct(elements []osm.Element) Result {
	nodes := make(map[int64]geo.Location, len(elements))
	for _, e := range elements {
		if e.Type == osm.ElementNode {
			nodes[e.ID] = geo.Location{Latitude: e.Lat, Longitude: e.Lon}
		}
	}

	var res Result
	for _, e := range elements {
		if !Qualifies(e) {
			continue
		}

		if len(e.Nodes) < MinVertices {
			res.Degenerate = append(res.Degenerate, e.ID)
			continue
		}

		vertices, missing, ok := resolve(e.Nodes, nodes)
		if !ok {
			res.Gaps = append(res.Gaps, Gap{WayID: e.ID, MissingNode: missing})
			continue
		}

		res.Polygons = append(res.Polygons, Polygon{
			WayID:    e.ID,
			Vertices: vertices,
			Tags:     e.Tags,
		})
	}
	return res
}

func resolve(refs []int64, nodes map[int64]geo.Location) ([]geo.Location, int64, bool) {
	vertices := make([]geo.Location, 0, len(refs))
	for _, id := range refs {
		loc, ok := nodes[id]
		if !ok {
			return nil, id, false
		}
		vertices = append(vertices, loc)
	}
	return vertices, 0, true
}
