package location

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/NERVsystems/osmsurvey/pkg/geo"
	"github.com/NERVsystems/osmsurvey/pkg/survey"
)

// Record is one line of a replay file:
//
//	{"lat": 55.7512, "lon": 37.6184, "accuracy": 12}
//	{"error": 1, "message": "User denied Geolocation"}
//
// A non-zero Error replays a provider failure with that code.
type Record struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Accuracy float64 `json:"accuracy"`
	Error    int     `json:"error,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// Replay hands out recorded fixes one per request. Once the track is
// exhausted every request fails with PositionUnavailable.
type Replay struct {
	mu      sync.Mutex
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
	done    bool
	now     func() time.Time
}

// OpenReplay opens a JSON-lines track file.
func OpenReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	r := NewReplay(f)
	r.closer = f
	return r, nil
}

// NewReplay reads a track from r.
func NewReplay(r io.Reader) *Replay {
	return &Replay{scanner: bufio.NewScanner(r), now: time.Now}
}

// Close releases the underlying file, if any.
func (r *Replay) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// CurrentPosition implements survey.LocationProvider.
func (r *Replay) CurrentPosition(ctx context.Context, _ survey.PositionOptions) (survey.Fix, error) {
	if err := ctx.Err(); err != nil {
		return survey.Fix{}, err
	}

	rec, line, err := r.next()
	if err != nil {
		return survey.Fix{}, err
	}
	if rec.Error != 0 {
		return survey.Fix{}, &survey.LocationError{Code: survey.LocationErrorCode(rec.Error), Message: rec.Message}
	}

	p := geo.Location{Latitude: rec.Lat, Longitude: rec.Lon}
	if err := p.Validate(); err != nil {
		return survey.Fix{}, &survey.LocationError{
			Code:    survey.PositionUnavailable,
			Message: fmt.Sprintf("replay line %d: %v", line, err),
		}
	}
	return survey.Fix{Point: p, Accuracy: rec.Accuracy, Timestamp: r.now()}, nil
}

func (r *Replay) next() (Record, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for !r.done {
		if !r.scanner.Scan() {
			r.done = true
			break
		}
		r.line++

		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return Record{}, r.line, &survey.LocationError{
				Code:    survey.PositionUnavailable,
				Message: fmt.Sprintf("replay line %d: %v", r.line, err),
			}
		}
		return rec, r.line, nil
	}

	msg := "replay track exhausted"
	if err := r.scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		msg = fmt.Sprintf("replay read failed: %v", err)
	}
	return Record{}, r.line, &survey.LocationError{Code: survey.PositionUnavailable, Message: msg}
}
