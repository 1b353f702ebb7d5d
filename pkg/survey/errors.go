package survey

import (
	"errors"
	"fmt"
)

// ErrorKind classifies survey failures.
type ErrorKind int

const (
	KindLocationUnavailable ErrorKind = iota + 1
	KindLowAccuracy
	KindFetchFailure
	KindReconstructionGap
	KindSubmissionFailure
	KindInputCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case KindLocationUnavailable:
		return "location_unavailable"
	case KindLowAccuracy:
		return "low_accuracy"
	case KindFetchFailure:
		return "fetch_failure"
	case KindReconstructionGap:
		return "reconstruction_gap"
	case KindSubmissionFailure:
		return "submission_failure"
	case KindInputCancelled:
		return "input_cancelled"
	default:
		return "unknown"
	}
}

// Error is a classified survey failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// LocationErrorCode follows the W3C geolocation error codes.
type LocationErrorCode int

const (
	PermissionDenied    LocationErrorCode = 1
	PositionUnavailable LocationErrorCode = 2
	Timeout             LocationErrorCode = 3
)

// LocationError is reported by a LocationProvider.
type LocationError struct {
	Code    LocationErrorCode
	Message string
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("location error %d: %s", e.Code, e.Message)
}

// ErrFetchInProgress is returned by FetchAround while a query is in flight.
var ErrFetchInProgress = errors.New("building fetch already in progress")

// ErrLowAccuracy wraps a fix that was too imprecise to use.
type ErrLowAccuracy struct {
	Accuracy float64
	Limit    float64
}

func (e *ErrLowAccuracy) Error() string {
	return fmt.Sprintf("accuracy %.0f m exceeds %.0f m", e.Accuracy, e.Limit)
}
