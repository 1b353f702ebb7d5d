package console

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NERVsystems/osmsurvey/pkg/buildings"
	"github.com/NERVsystems/osmsurvey/pkg/geo"
	"github.com/NERVsystems/osmsurvey/pkg/survey"
)

// syncBuffer is a bytes.Buffer safe for the console's writer goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// inline runs everything on the caller's goroutine.
type inline struct{}

func (inline) Post(fn func())              { fn() }
func (inline) Go(work func(), done func()) { work(); done() }
func (inline) After(time.Duration, func()) {}

func building(id int64, lat, lon float64) buildings.Polygon {
	return buildings.Polygon{
		WayID: id,
		Tags:  map[string]string{"building": "house"},
		Vertices: []geo.Location{
			{Latitude: lat, Longitude: lon},
			{Latitude: lat + 0.0002, Longitude: lon},
			{Latitude: lat + 0.0002, Longitude: lon + 0.0004},
			{Latitude: lat, Longitude: lon + 0.0004},
			{Latitude: lat, Longitude: lon},
		},
	}
}

func TestAsk(t *testing.T) {
	out := &syncBuffer{}
	c := New(strings.NewReader("5\n\n  /cancel \n"), out, "")
	defer c.Close()

	tests := []struct {
		text string
		ok   bool
	}{
		{"5", true},
		{"", true},
		{"", false}, // cancel token
		{"", false}, // end of input
	}
	for i, tt := range tests {
		text, ok := c.Ask("House number = ?")
		if text != tt.text || ok != tt.ok {
			t.Errorf("answer %d = %q, %v; want %q, %v", i, text, ok, tt.text, tt.ok)
		}
	}
	if !strings.Contains(out.String(), "House number = ? ") {
		t.Errorf("prompt not shown: %q", out.String())
	}
}

func TestCustomCancelToken(t *testing.T) {
	c := New(strings.NewReader("q\n/cancel\n"), &syncBuffer{}, "q")
	defer c.Close()

	if _, ok := c.Ask("Street = ?"); ok {
		t.Error("custom token did not cancel")
	}
	if text, ok := c.Ask("Street = ?"); !ok || text != "/cancel" {
		t.Errorf("default token treated specially: %q, %v", text, ok)
	}
}

func TestReadLineStopsOnContextAndClose(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	c := New(r, &syncBuffer{}, "")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, ok := c.ReadLine(ctx); ok {
		t.Error("ReadLine returned a line on an idle input")
	}

	c.Close()
	if _, ok := c.Ask("Comment = ?"); ok {
		t.Error("Ask after Close did not cancel")
	}
}

func TestNotify(t *testing.T) {
	out := &syncBuffer{}
	c := New(strings.NewReader(""), out, "")
	defer c.Close()

	c.Notify("Error 1: denied :(")
	if out.String() != "* Error 1: denied :(\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestSurface(t *testing.T) {
	s := NewSurface()
	clicked := 0
	a := s.AddShape(building(100, 55.75, 37.61), survey.StyleNeedsAttention, func() { clicked++ })
	b := s.AddShape(building(200, 55.76, 37.62), survey.StyleNeedsAttention, nil)
	if a != 1 || b != 2 {
		t.Fatalf("ids = %d, %d", a, b)
	}

	shapes := s.Shapes()
	if !math.IsInf(shapes[0].Distance, 1) {
		t.Errorf("distance before any fix = %v", shapes[0].Distance)
	}

	s.SetStyle(a, survey.StyleConfirmed)
	s.SetStyle(42, survey.StyleConfirmed)
	s.CenterOn(geo.Location{Latitude: 55.7501, Longitude: 37.6102}, 16)

	shapes = s.Shapes()
	if shapes[0].Style != survey.StyleConfirmed || shapes[1].Style != survey.StyleNeedsAttention {
		t.Errorf("styles = %v, %v", shapes[0].Style, shapes[1].Style)
	}
	if shapes[0].Distance > 1 {
		t.Errorf("distance to the centred building = %v", shapes[0].Distance)
	}
	if _, zoom := s.View(); zoom != 16 {
		t.Errorf("zoom = %d", zoom)
	}

	click, ok := s.ClickHandler(a)
	if !ok {
		t.Fatal("no click handler for shape 1")
	}
	click()
	if clicked != 1 {
		t.Errorf("clicked = %d", clicked)
	}
	for _, id := range []survey.ShapeID{0, b, 3} {
		if _, ok := s.ClickHandler(id); ok {
			t.Errorf("shape %d is clickable", id)
		}
	}

	s.RemoveShape(a)
	s.RemoveShape(a)
	s.SetStyle(a, survey.StyleInProgress)
	if _, ok := s.ClickHandler(a); ok {
		t.Error("removed shape is clickable")
	}
	if shapes := s.Shapes(); len(shapes) != 1 || shapes[0].ID != b {
		t.Errorf("shapes after removal = %+v", shapes)
	}
	if fc := s.FeatureCollection(); len(fc.Features) != 1 {
		t.Errorf("exported %d features after removal", len(fc.Features))
	}
	if c := s.AddShape(building(300, 55.77, 37.63), survey.StyleNeedsAttention, nil); c != 3 {
		t.Errorf("id after removal = %d, want 3", c)
	}
}

func TestWriteGeoJSON(t *testing.T) {
	s := NewSurface()
	s.AddShape(building(100, 55.75, 37.61), survey.StyleInProgress, nil)

	var buf bytes.Buffer
	if err := s.WriteGeoJSON(&buf); err != nil {
		t.Fatalf("WriteGeoJSON: %v", err)
	}

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Type        string         `json:"type"`
				Coordinates [][][2]float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if doc.Type != "FeatureCollection" || len(doc.Features) != 1 {
		t.Fatalf("doc = %+v", doc)
	}
	f := doc.Features[0]
	if f.ID != "way/100" || f.Geometry.Type != "Polygon" {
		t.Errorf("feature = %+v", f)
	}
	if ring := f.Geometry.Coordinates[0]; len(ring) != 5 || ring[0][0] != 37.61 || ring[0][1] != 55.75 {
		t.Errorf("ring = %v", ring)
	}
	if f.Properties["style"] != "in_progress" || f.Properties["stroke"] != "orange" || f.Properties["tag:building"] != "house" {
		t.Errorf("properties = %v", f.Properties)
	}
}

func TestCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shapes.geojson")
	input := strings.Join([]string{
		"list",
		"tag 1",
		"5",
		"Lenina",
		"tag 9",
		"tag x",
		"where",
		"export " + path,
		"frobnicate",
		"quit",
		"tag 1",
	}, "\n") + "\n"

	out := &syncBuffer{}
	c := New(strings.NewReader(input), out, "")
	defer c.Close()
	s := NewSurface()

	var answers []string
	s.AddShape(building(100, 55.75, 37.61), survey.StyleNeedsAttention, func() {
		for _, q := range []string{"House number = ?", "Street = ?"} {
			a, _ := c.Ask(q)
			answers = append(answers, a)
		}
	})
	s.CenterOn(geo.Location{Latitude: 55.75, Longitude: 37.61}, 16)

	if err := NewCommands(c, s, inline{}, nil).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(answers) != 2 || answers[0] != "5" || answers[1] != "Lenina" {
		t.Errorf("answers = %q", answers)
	}

	got := out.String()
	for _, want := range []string{
		"way 100",
		"no building 9",
		`not a building number: "x"`,
		"zoom 16",
		"wrote 1 buildings to " + path,
		`unknown command "frobnicate"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	if !strings.Contains(string(data), `"way/100"`) {
		t.Errorf("export = %s", data)
	}
}

func TestCommandsEndOfInput(t *testing.T) {
	c := New(strings.NewReader("list\n"), &syncBuffer{}, "")
	defer c.Close()

	done := make(chan error, 1)
	go func() { done <- NewCommands(c, NewSurface(), inline{}, nil).Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return at end of input")
	}
}
