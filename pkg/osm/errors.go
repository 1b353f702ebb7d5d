package osm

import (
	"fmt"
	"net/http"
)

// APIError represents an error that occurred while communicating with
// an external API service, with information to help users recover.
type APIError struct {
	Service     string // The API service name (e.g., "Overpass", "Notes")
	StatusCode  int    // HTTP status code, 0 when no response was received
	Message     string // Error message
	Recoverable bool   // Whether trying again later can succeed
	Guidance    string // Guidance for users on how to recover
}

// Error implements the error interface and provides a formatted error message.
func (e *APIError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s API error (%d): %s. %s", e.Service, e.StatusCode, e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Service, e.StatusCode, e.Message)
}

// Common error guidance messages
const (
	GuidanceOverpassTimeout   = "Walk to a less dense area or lower the fetch radius."
	GuidanceOverpassRateLimit = "The Overpass API is under high load. Buildings will be fetched again on the next position update."
	GuidanceOverpassSyntax    = "The building query was rejected by the server."
	GuidanceOverpassRuntime   = "The Overpass server could not finish the query."

	GuidanceNotesRateLimit = "Too many notes were submitted. Wait a minute and tap the building again."
	GuidanceNotesRejected  = "The note was rejected. Check the entered text and tap the building again."

	GuidanceGeneral      = "Please try again later."
	GuidanceNetworkError = "Check your internet connection and try again."
	GuidanceDataError    = "The data received was incomplete or malformed."
)

// NewAPIError creates a new APIError with appropriate guidance based on status code.
func NewAPIError(service string, statusCode int, message, guidance string) *APIError {
	if guidance == "" {
		switch statusCode {
		case 0:
			guidance = GuidanceNetworkError
		case http.StatusTooManyRequests:
			guidance = "Rate limit exceeded. Please try again in a few moments."
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			guidance = "The request timed out. Please try again later."
		case http.StatusBadRequest:
			guidance = "The request was invalid."
		case http.StatusServiceUnavailable:
			guidance = "The service is temporarily unavailable. Please try again later."
		default:
			guidance = GuidanceGeneral
		}
	}

	return &APIError{
		Service:     service,
		StatusCode:  statusCode,
		Message:     message,
		Recoverable: statusCode != http.StatusBadRequest,
		Guidance:    guidance,
	}
}
