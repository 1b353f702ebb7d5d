package address

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Mode names a formatting strategy.
type Mode string

const (
	ModeComposed Mode = "composed"
	ModeKeyValue Mode = "keyvalue"
)

// Formatter renders an answer as note text.
type Formatter interface {
	Format(a Answer) string
}

// NewFormatter returns the formatter for mode.
func NewFormatter(mode Mode, loc Locale) (Formatter, error) {
	switch mode {
	case ModeComposed, "":
		return ComposedFormatter{Locale: loc}, nil
	case ModeKeyValue:
		return KeyValueFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown formatter mode %q", mode)
	}
}

// ComposedFormatter writes a postal-style line:
// "street, house № number, levels floors (comment)".
type ComposedFormatter struct {
	Locale Locale
}

// Format implements Formatter.
func (f ComposedFormatter) Format(a Answer) string {
	var pieces []string
	if street, ok := a.Get(FieldStreet); ok {
		pieces = append(pieces, street)
	}
	if number, ok := a.Get(FieldNumber); ok {
		pieces = append(pieces, f.Locale.HouseNumber+number)
	}
	if levels, ok := a.Get(FieldLevels); ok {
		pieces = append(pieces, levels+" "+f.floorWord(levels))
	}

	text := strings.Join(pieces, ", ")
	if comment, ok := a.Get(FieldComment); ok {
		if text == "" {
			return comment
		}
		text += " (" + comment + ")"
	}
	return text
}

// floorWord agrees the floor noun with levels. Anything that is not a whole
// number takes the many form.
func (f ComposedFormatter) floorWord(levels string) string {
	rule := f.Locale.Plural
	if rule == nil {
		rule = RussianPlural
	}

	v, err := strconv.ParseFloat(levels, 64)
	if err != nil || math.IsInf(v, 0) || v != math.Trunc(v) {
		return f.Locale.Floors.For(PluralMany)
	}
	v = math.Abs(v)
	if v >= 100 {
		// past 100 the rules only look at the last two digits and at n == 1
		v = 100 + math.Mod(v, 100)
	}
	return f.Locale.Floors.For(rule(int(v)))
}

// KeyValueFormatter writes one "key = value" line per field in the order
// the fields were answered.
type KeyValueFormatter struct{}

// Format implements Formatter.
func (KeyValueFormatter) Format(a Answer) string {
	lines := make([]string, 0, a.Len())
	for _, k := range a.keys {
		lines = append(lines, k+" = "+a.values[k])
	}
	return strings.Join(lines, "\n")
}
