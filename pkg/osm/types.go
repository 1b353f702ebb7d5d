// Package osm provides clients for the OpenStreetMap services the survey talks to.
package osm

// ElementType is the kind of an Overpass response element.
type ElementType string

const (
	ElementNode     ElementType = "node"
	ElementWay      ElementType = "way"
	ElementRelation ElementType = "relation"
)

// Element is a raw node or way from an Overpass JSON response. Nodes carry
// Lat/Lon, ways carry the ordered node references in Nodes.
type Element struct {
	ID    int64             `json:"id"`
	Type  ElementType       `json:"type"`
	Lat   float64           `json:"lat,omitempty"`
	Lon   float64           `json:"lon,omitempty"`
	Tags  map[string]string `json:"tags,omitempty"`
	Nodes []int64           `json:"nodes,omitempty"`
}

// HasTag reports whether the element carries key, whatever its value.
func (e Element) HasTag(key string) bool {
	_, ok := e.Tags[key]
	return ok
}

// OverpassResponse is the JSON envelope returned by the interpreter endpoint.
type OverpassResponse struct {
	Version   float64   `json:"version"`
	Generator string    `json:"generator"`
	Remark    string    `json:"remark,omitempty"`
	Elements  []Element `json:"elements"`
}

// Note is a geolocated free-text note for the OSM notes API.
type Note struct {
	Lat  float64
	Lon  float64
	Text string
}
