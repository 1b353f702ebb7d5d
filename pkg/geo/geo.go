// Package geo provides the geographic primitives shared by the survey packages.
package geo

import (
	"fmt"
	"math"
)

// EarthRadius is the mean Earth radius in meters. Distances treat the Earth
// as a sphere of this radius.
const EarthRadius = 6371000.0

// Location is a WGS84 point in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Nowhere is the sentinel origin used before the first fetch. It lies
// outside the valid coordinate range, so every real fix is infinitely far
// from it.
var Nowhere = Location{Latitude: math.NaN(), Longitude: math.NaN()}

// IsNowhere reports whether l is the Nowhere sentinel.
func (l Location) IsNowhere() bool {
	return math.IsNaN(l.Latitude) || math.IsNaN(l.Longitude)
}

// String formats the location as "lat,lon" with 6 decimals.
func (l Location) String() string {
	return fmt.Sprintf("%.6f,%.6f", l.Latitude, l.Longitude)
}

// DistanceTo returns the great-circle distance in meters between l and other.
// The distance to or from Nowhere is +Inf.
func (l Location) DistanceTo(other Location) float64 {
	if l.IsNowhere() || other.IsNowhere() {
		return math.Inf(1)
	}
	return HaversineDistance(l.Latitude, l.Longitude, other.Latitude, other.Longitude)
}

// Validate checks that latitude and longitude are within range.
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 || math.IsNaN(l.Latitude) {
		return fmt.Errorf("invalid latitude: %f (must be between -90 and 90)", l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 || math.IsNaN(l.Longitude) {
		return fmt.Errorf("invalid longitude: %f (must be between -180 and 180)", l.Longitude)
	}
	return nil
}

// HaversineDistance calculates the great-circle distance in meters between
// two points given in decimal degrees.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadius * c
}

// BoundingBox is an axis-aligned box in decimal degrees.
type BoundingBox struct {
	MinLat float64 `json:"minLat"`
	MinLon float64 `json:"minLon"`
	MaxLat float64 `json:"maxLat"`
	MaxLon float64 `json:"maxLon"`
}

// NewBoundingBox creates an empty bounding box that any point will extend.
func NewBoundingBox() *BoundingBox {
	return &BoundingBox{
		MinLat: math.Inf(1),
		MinLon: math.Inf(1),
		MaxLat: math.Inf(-1),
		MaxLon: math.Inf(-1),
	}
}

// BoundsOf returns the bounding box of the given points.
func BoundsOf(points []Location) *BoundingBox {
	bb := NewBoundingBox()
	for _, p := range points {
		bb.Extend(p)
	}
	return bb
}

// Extend grows the box to include p.
func (b *BoundingBox) Extend(p Location) {
	b.MinLat = math.Min(b.MinLat, p.Latitude)
	b.MinLon = math.Min(b.MinLon, p.Longitude)
	b.MaxLat = math.Max(b.MaxLat, p.Latitude)
	b.MaxLon = math.Max(b.MaxLon, p.Longitude)
}

// IsEmpty reports whether no point has been added.
func (b *BoundingBox) IsEmpty() bool {
	return b.MinLat > b.MaxLat || b.MinLon > b.MaxLon
}

// Center returns the midpoint of the box.
func (b *BoundingBox) Center() Location {
	return Location{
		Latitude:  (b.MinLat + b.MaxLat) / 2,
		Longitude: (b.MinLon + b.MaxLon) / 2,
	}
}
