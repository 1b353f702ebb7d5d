package tracing

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for survey operations
const (
	// Location attributes
	AttrLocationLat      = "survey.location.lat"
	AttrLocationLon      = "survey.location.lon"
	AttrLocationAccuracy = "survey.location.accuracy_m"

	// Fetch attributes
	AttrFetchRadius   = "survey.fetch.radius_m"
	AttrFetchElements = "survey.fetch.elements"
	AttrFetchPolygons = "survey.fetch.polygons"
	AttrFetchDropped  = "survey.fetch.dropped"

	// Tagging session attributes
	AttrSessionWayID   = "survey.session.way_id"
	AttrSessionOutcome = "survey.session.outcome"

	// External service attributes
	AttrServiceName      = "osm.service.name"
	AttrServiceOperation = "osm.service.operation"

	// Rate limiting attributes
	AttrRateLimitService = "osm.ratelimit.service"
	AttrRateLimitWaitMs  = "osm.ratelimit.wait_ms"

	// HTTP transport attributes
	AttrHTTPMethod     = "http.method"
	AttrHTTPStatusCode = "http.status_code"

	// Error attributes
	AttrErrorType    = "error.type"
	AttrErrorMessage = "error.message"
)

// Service names
const (
	ServiceOverpass = "overpass"
	ServiceNotes    = "notes"
)

// LocationAttributes returns attributes describing a position fix
func LocationAttributes(lat, lon, accuracy float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Float64(AttrLocationLat, lat),
		attribute.Float64(AttrLocationLon, lon),
		attribute.Float64(AttrLocationAccuracy, accuracy),
	}
}

// FetchAttributes returns attributes for a completed building fetch
func FetchAttributes(elements, polygons, dropped int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrFetchElements, elements),
		attribute.Int(AttrFetchPolygons, polygons),
		attribute.Int(AttrFetchDropped, dropped),
	}
}

// SessionAttributes returns attributes for a tagging session
func SessionAttributes(wayID int64, outcome string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64(AttrSessionWayID, wayID),
		attribute.String(AttrSessionOutcome, outcome),
	}
}

// ErrorAttributes returns attributes for errors
func ErrorAttributes(errType string, err error) []attribute.KeyValue {
	if err == nil {
		return nil
	}
	return []attribute.KeyValue{
		attribute.String(AttrErrorType, errType),
		attribute.String(AttrErrorMessage, err.Error()),
	}
}
