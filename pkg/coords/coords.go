// Package coords parses surveyor-entered positions into decimal degrees.
//
// A fixed survey origin can be typed in any of the notations a field crew
// is likely to read off a device or paper map:
//   - MGRS, e.g. "37UDB1234567890"
//   - DMS, e.g. "55°45'21"N 37°37'02"E"
//   - decimal degrees, e.g. "55.7558, 37.6173"
package coords

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/NERVsystems/osmsurvey/pkg/geo"
	"github.com/akhenakh/mgrs"
)

// Format identifies the notation a position was written in.
type Format int

const (
	FormatUnknown Format = iota
	FormatDecimal
	FormatDMS
	FormatMGRS
)

func (f Format) String() string {
	switch f {
	case FormatDecimal:
		return "decimal"
	case FormatDMS:
		return "dms"
	case FormatMGRS:
		return "mgrs"
	default:
		return "unknown"
	}
}

// Position is a parsed position together with the notation it came from.
type Position struct {
	Location geo.Location
	Format   Format
}

var (
	// zone, latitude band (no I/O), 100km square, even count of digits
	mgrsPattern = regexp.MustCompile(`(?i)^(\d{1,2})([C-HJ-NP-X])([A-HJ-NP-Z]{2})(\d{2,10})$`)

	dmsPattern = regexp.MustCompile(`(?i)^(\d+)[°d\s]+(\d+)[′'m\s]+(\d+(?:\.\d+)?)[″"s]?\s*([NS])[\s,]+(\d+)[°d\s]+(\d+)[′'m\s]+(\d+(?:\.\d+)?)[″"s]?\s*([EW])$`)

	decimalPattern = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*[,\s]\s*(-?\d+(?:\.\d+)?)$`)
)

// Parse detects the notation of input and converts it to decimal degrees.
func Parse(input string) (Position, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Position{}, fmt.Errorf("empty position")
	}

	compact := strings.ToUpper(strings.ReplaceAll(input, " ", ""))
	switch {
	case mgrsPattern.MatchString(compact):
		return parseMGRS(compact)
	case dmsPattern.MatchString(input):
		return parseDMS(input)
	case decimalPattern.MatchString(input):
		return parseDecimal(input)
	}

	return Position{}, fmt.Errorf("unrecognized position format: %q", input)
}

func parseMGRS(input string) (Position, error) {
	m := mgrsPattern.FindStringSubmatch(input)
	if len(m[4])%2 != 0 {
		return Position{}, fmt.Errorf("MGRS %q: easting and northing must have equal precision", input)
	}

	lat, lon, err := mgrs.MGRSToLatLng(input)
	if err != nil {
		return Position{}, fmt.Errorf("MGRS %q: %w", input, err)
	}
	return newPosition(lat, lon, FormatMGRS)
}

func parseDMS(input string) (Position, error) {
	m := dmsPattern.FindStringSubmatch(input)

	lat, err := dmsToDegrees(m[1], m[2], m[3], 90)
	if err != nil {
		return Position{}, fmt.Errorf("DMS latitude: %w", err)
	}
	lon, err := dmsToDegrees(m[5], m[6], m[7], 180)
	if err != nil {
		return Position{}, fmt.Errorf("DMS longitude: %w", err)
	}

	if strings.EqualFold(m[4], "S") {
		lat = -lat
	}
	if strings.EqualFold(m[8], "W") {
		lon = -lon
	}
	return newPosition(lat, lon, FormatDMS)
}

func dmsToDegrees(deg, min, sec string, maxDeg float64) (float64, error) {
	d, _ := strconv.ParseFloat(deg, 64)
	m, _ := strconv.ParseFloat(min, 64)
	s, _ := strconv.ParseFloat(sec, 64)
	if d > maxDeg || m >= 60 || s >= 60 {
		return 0, fmt.Errorf("%s° %s' %s\" out of range", deg, min, sec)
	}
	return d + m/60 + s/3600, nil
}

func parseDecimal(input string) (Position, error) {
	m := decimalPattern.FindStringSubmatch(input)

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Position{}, fmt.Errorf("invalid latitude %q: %w", m[1], err)
	}
	lon, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Position{}, fmt.Errorf("invalid longitude %q: %w", m[2], err)
	}
	return newPosition(lat, lon, FormatDecimal)
}

func newPosition(lat, lon float64, format Format) (Position, error) {
	loc := geo.Location{Latitude: lat, Longitude: lon}
	if err := loc.Validate(); err != nil {
		return Position{}, err
	}
	return Position{Location: loc, Format: format}, nil
}

// ToMGRS renders loc as an MGRS string. Precision 1–5 selects 10km down to
// 1m resolution; anything else means 1m.
func ToMGRS(loc geo.Location, precision int) (string, error) {
	if precision < 1 || precision > 5 {
		precision = 5
	}
	if err := loc.Validate(); err != nil {
		return "", err
	}

	s, err := mgrs.LatLngToMGRS(loc.Latitude, loc.Longitude, precision)
	if err != nil {
		return "", fmt.Errorf("MGRS conversion failed: %w", err)
	}
	return s, nil
}
