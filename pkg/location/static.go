// Package location provides survey.LocationProvider implementations for
// running without a device GPS: a fixed point and a recorded track.
package location

import (
	"context"
	"fmt"
	"time"

	"github.com/NERVsystems/osmsurvey/pkg/coords"
	"github.com/NERVsystems/osmsurvey/pkg/geo"
	"github.com/NERVsystems/osmsurvey/pkg/survey"
)

// Static reports the same point on every request.
type Static struct {
	point    geo.Location
	accuracy float64
	now      func() time.Time
}

// NewStatic parses point in any format pkg/coords understands (decimal,
// DMS or MGRS) and reports it with the given accuracy in metres.
func NewStatic(point string, accuracy float64) (*Static, error) {
	pos, err := coords.Parse(point)
	if err != nil {
		return nil, fmt.Errorf("static location: %w", err)
	}
	if accuracy < 0 {
		return nil, fmt.Errorf("static location: accuracy must not be negative, got %v", accuracy)
	}
	return &Static{point: pos.Location, accuracy: accuracy, now: time.Now}, nil
}

// CurrentPosition implements survey.LocationProvider.
func (s *Static) CurrentPosition(ctx context.Context, _ survey.PositionOptions) (survey.Fix, error) {
	if err := ctx.Err(); err != nil {
		return survey.Fix{}, err
	}
	return survey.Fix{Point: s.point, Accuracy: s.accuracy, Timestamp: s.now()}, nil
}
