// Package queries provides utilities for building OpenStreetMap API queries.
package queries

import (
	"fmt"
	"strconv"
	"strings"
)

// Filter is a single Overpass tag filter such as [building] or
// [!"addr:housenumber"].
type Filter struct {
	Key    string
	Value  string
	Negate bool
}

// HasKey matches elements carrying key with any value.
func HasKey(key string) Filter {
	return Filter{Key: key}
}

// LacksKey matches elements without key.
func LacksKey(key string) Filter {
	return Filter{Key: key, Negate: true}
}

func (f Filter) String() string {
	switch {
	case f.Negate:
		return fmt.Sprintf("[!%q]", f.Key)
	case f.Value == "":
		return fmt.Sprintf("[%q]", f.Key)
	default:
		return fmt.Sprintf("[%q=%q]", f.Key, f.Value)
	}
}

// OverpassBuilder provides a fluent interface for building Overpass API queries.
// Statements are emitted in the order they are added.
type OverpassBuilder struct {
	buf    strings.Builder
	output string
}

// NewOverpassBuilder creates a new Overpass query builder.
// All queries start with [out:json] to request JSON output format.
func NewOverpassBuilder() *OverpassBuilder {
	b := &OverpassBuilder{}
	b.buf.WriteString("[out:json];")
	return b
}

// WithWayAround selects ways within radius metres of lat,lon that match
// every filter.
func (b *OverpassBuilder) WithWayAround(radius, lat, lon float64, filters ...Filter) *OverpassBuilder {
	b.addElement("way", fmt.Sprintf("(around:%s,%s,%s)", formatRadius(radius), formatCoord(lat), formatCoord(lon)), filters)
	return b
}

// WithRecurseDown adds the nodes referenced by the current set, which is
// what a client needs to resolve way geometry.
func (b *OverpassBuilder) WithRecurseDown() *OverpassBuilder {
	b.buf.WriteString("(._;>;);")
	return b
}

// WithOutput specifies the output verbosity (default is a plain "out;").
// Common options include 'body', 'center', 'geom', etc.
func (b *OverpassBuilder) WithOutput(outputType string) *OverpassBuilder {
	b.output = outputType
	return b
}

// Build returns the complete Overpass query string, terminated by the
// output statement.
func (b *OverpassBuilder) Build() string {
	if b.output == "" {
		return b.buf.String() + "out;"
	}
	return b.buf.String() + "out " + b.output + ";"
}

func (b *OverpassBuilder) addElement(kind, area string, filters []Filter) {
	b.buf.WriteString(kind)
	b.buf.WriteString(area)
	for _, f := range filters {
		b.buf.WriteString(f.String())
	}
	b.buf.WriteString(";")
}

// UnaddressedBuildingsAround returns the query for every building way within
// radius metres of lat,lon that has no house number, together with its nodes.
func UnaddressedBuildingsAround(radius, lat, lon float64) string {
	return NewOverpassBuilder().
		WithWayAround(radius, lat, lon, HasKey("building"), LacksKey("addr:housenumber")).
		WithRecurseDown().
		Build()
}

// radius keeps one decimal so whole metres read as "1000.0"
func formatRadius(r float64) string {
	return strconv.FormatFloat(r, 'f', 1, 64)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
