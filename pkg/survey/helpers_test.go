package survey

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/NERVsystems/osmsurvey/pkg/buildings"
	"github.com/NERVsystems/osmsurvey/pkg/geo"
	"github.com/NERVsystems/osmsurvey/pkg/osm"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// manualScheduler runs everything on the test goroutine. Go work is queued
// like any other event so tests control when results arrive.
type manualScheduler struct {
	queue  []func()
	timers []manualTimer
}

type manualTimer struct {
	d  time.Duration
	fn func()
}

func (s *manualScheduler) Post(fn func()) { s.queue = append(s.queue, fn) }

func (s *manualScheduler) Go(work func(), done func()) {
	s.queue = append(s.queue, func() {
		work()
		s.Post(done)
	})
}

func (s *manualScheduler) After(d time.Duration, fn func()) {
	s.timers = append(s.timers, manualTimer{d: d, fn: fn})
}

// drain runs queued events until none are left.
func (s *manualScheduler) drain() {
	for len(s.queue) > 0 {
		fn := s.queue[0]
		s.queue = s.queue[1:]
		fn()
	}
}

// tick fires every pending timer and drains.
func (s *manualScheduler) tick() {
	timers := s.timers
	s.timers = nil
	for _, t := range timers {
		s.Post(t.fn)
	}
	s.drain()
}

type fakeShape struct {
	polygon buildings.Polygon
	styles  []Style
	onClick func()
}

type fakeSurface struct {
	shapes  map[ShapeID]*fakeShape
	removed []ShapeID
	next    ShapeID
	centers []geo.Location
	zoom    int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{shapes: make(map[ShapeID]*fakeShape)}
}

func (f *fakeSurface) AddShape(p buildings.Polygon, style Style, onClick func()) ShapeID {
	f.next++
	f.shapes[f.next] = &fakeShape{polygon: p, styles: []Style{style}, onClick: onClick}
	return f.next
}

func (f *fakeSurface) SetStyle(id ShapeID, style Style) {
	if s, ok := f.shapes[id]; ok {
		s.styles = append(s.styles, style)
	}
}

func (f *fakeSurface) RemoveShape(id ShapeID) {
	if _, ok := f.shapes[id]; ok {
		delete(f.shapes, id)
		f.removed = append(f.removed, id)
	}
}

// shapesOf returns the live shape IDs drawn for wayID.
func (f *fakeSurface) shapesOf(wayID int64) []ShapeID {
	var ids []ShapeID
	for id, s := range f.shapes {
		if s.polygon.WayID == wayID {
			ids = append(ids, id)
		}
	}
	return ids
}

func (f *fakeSurface) CenterOn(p geo.Location, zoom int) {
	f.centers = append(f.centers, p)
	f.zoom = zoom
}

func (f *fakeSurface) click(id ShapeID) {
	f.shapes[id].onClick()
}

type fakeNotifier struct {
	messages []string
}

func (n *fakeNotifier) Notify(msg string) { n.messages = append(n.messages, msg) }

type fakeProvider struct {
	results []providerResult
	calls   int
}

type providerResult struct {
	fix Fix
	err error
	// block makes the call wait for its context
	block bool
}

func (p *fakeProvider) CurrentPosition(ctx context.Context, opts PositionOptions) (Fix, error) {
	r := p.results[p.calls%len(p.results)]
	p.calls++
	if r.block {
		<-ctx.Done()
		return Fix{}, ctx.Err()
	}
	return r.fix, r.err
}

type fakeSource struct {
	elements []osm.Element
	err      error
	queries  []string
}

func (s *fakeSource) Query(ctx context.Context, query string) ([]osm.Element, error) {
	s.queries = append(s.queries, query)
	return s.elements, s.err
}

type fakeNotes struct {
	errs  []error
	notes []osm.Note
}

func (n *fakeNotes) CreateNote(ctx context.Context, note osm.Note) error {
	n.notes = append(n.notes, note)
	if len(n.errs) > 0 {
		err := n.errs[0]
		n.errs = n.errs[1:]
		return err
	}
	return nil
}

// fakePrompter answers from a script; a nil entry cancels.
type fakePrompter struct {
	replies []*string
	asked   []string
}

func (p *fakePrompter) Ask(label string) (string, bool) {
	p.asked = append(p.asked, label)
	if len(p.replies) == 0 {
		return "", false
	}
	r := p.replies[0]
	p.replies = p.replies[1:]
	if r == nil {
		return "", false
	}
	return *r, true
}

func says(replies ...string) []*string {
	out := make([]*string, len(replies))
	for i := range replies {
		out[i] = &replies[i]
	}
	return out
}

// square returns a closed four-node building way and its nodes, offset so
// several can coexist in one response.
func square(wayID int64, lat, lon float64) []osm.Element {
	base := wayID * 10
	return []osm.Element{
		{Type: osm.ElementWay, ID: wayID, Tags: map[string]string{"building": "yes"}, Nodes: []int64{base + 1, base + 2, base + 3, base + 4, base + 1}},
		{Type: osm.ElementNode, ID: base + 1, Lat: lat, Lon: lon},
		{Type: osm.ElementNode, ID: base + 2, Lat: lat + 0.0002, Lon: lon},
		{Type: osm.ElementNode, ID: base + 3, Lat: lat + 0.0002, Lon: lon + 0.0004},
		{Type: osm.ElementNode, ID: base + 4, Lat: lat, Lon: lon + 0.0004},
	}
}
