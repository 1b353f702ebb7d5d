package survey

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/NERVsystems/osmsurvey/pkg/buildings"
	"github.com/NERVsystems/osmsurvey/pkg/geo"
	"github.com/NERVsystems/osmsurvey/pkg/monitoring"
	"github.com/NERVsystems/osmsurvey/pkg/osm"
	"github.com/NERVsystems/osmsurvey/pkg/osm/queries"
	"github.com/NERVsystems/osmsurvey/pkg/tracing"
)

// DefaultDrawnCacheSize bounds how many buildings stay on the surface.
const DefaultDrawnCacheSize = 4096

// ShapeHandler follows the shapes a Fetcher draws. Every method runs on
// the loop.
type ShapeHandler interface {
	// Start handles a click on a drawn building.
	Start(ctx context.Context, p buildings.Polygon, id ShapeID)

	// Drawn is called right after p was added to the surface as id.
	Drawn(p buildings.Polygon, id ShapeID)

	// Removed is called after shape id of wayID was taken off the surface.
	Removed(wayID int64, id ShapeID)
}

// Fetcher queries buildings around a point and draws them. Only one query
// runs at a time. Each way has at most one shape on the surface; when more
// than the drawn-cache size are drawn, the least recently seen ways are
// removed from the surface.
type Fetcher struct {
	radius   float64
	source   BuildingSource
	state    *FetchState
	surface  MapSurface
	notifier Notifier
	sched    Scheduler
	messages *Messages
	logger   *slog.Logger

	inflight *semaphore.Weighted
	drawn    *lru.Cache[int64, ShapeID]
	shapes   int
	handler  ShapeHandler
}

// NewFetcher creates a fetcher querying within radius metres.
func NewFetcher(radius float64, drawnCacheSize int, source BuildingSource, state *FetchState,
	surface MapSurface, notifier Notifier, sched Scheduler, messages *Messages, logger *slog.Logger) (*Fetcher, error) {
	if drawnCacheSize <= 0 {
		drawnCacheSize = DefaultDrawnCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	f := &Fetcher{
		radius:   radius,
		source:   source,
		state:    state,
		surface:  surface,
		notifier: notifier,
		sched:    sched,
		messages: messages,
		logger:   logger.With("component", "fetcher"),
		inflight: semaphore.NewWeighted(1),
	}

	drawn, err := lru.NewWithEvict[int64, ShapeID](drawnCacheSize, f.evicted)
	if err != nil {
		return nil, fmt.Errorf("create drawn-way cache: %w", err)
	}
	f.drawn = drawn
	return f, nil
}

// Handle sets the handler told about every shape drawn from now on.
func (f *Fetcher) Handle(h ShapeHandler) {
	f.handler = h
}

// evicted takes a way that fell out of the drawn cache off the surface.
func (f *Fetcher) evicted(wayID int64, id ShapeID) {
	f.surface.RemoveShape(id)
	f.shapes--
	monitoring.RecordPolygons("evicted", 1)
	monitoring.UpdateShapesOnMap(f.shapes)
	f.logger.Debug("removed building from the surface", "way", wayID, "shape", id)
	if f.handler != nil {
		f.handler.Removed(wayID, id)
	}
}

// FetchAround dispatches the building query for p and records p as the
// fetch origin. It returns ErrFetchInProgress, leaving the origin alone,
// while an earlier query has not completed.
func (f *Fetcher) FetchAround(ctx context.Context, p geo.Location) error {
	if !f.inflight.TryAcquire(1) {
		monitoring.RecordFetch("skipped", 0)
		return ErrFetchInProgress
	}

	query := queries.UnaddressedBuildingsAround(f.radius, p.Latitude, p.Longitude)
	f.state.SetOrigin(p)
	f.logger.Info("fetching buildings", "location", p.String(), "radius", f.radius)

	base := ctx
	spanCtx, span := tracing.StartSpan(ctx, "survey.fetch",
		trace.WithAttributes(attribute.Float64(tracing.AttrFetchRadius, f.radius)),
	)
	start := time.Now()

	var (
		elements []osm.Element
		err      error
	)
	f.sched.Go(func() {
		elements, err = f.source.Query(spanCtx, query)
	}, func() {
		defer f.inflight.Release(1)
		defer span.End()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "query failed")
			f.fail(err, time.Since(start))
			return
		}
		drawn, dropped := f.draw(base, elements)
		span.SetAttributes(tracing.FetchAttributes(len(elements), drawn, dropped)...)
		monitoring.RecordFetch("success", time.Since(start))
	})
	return nil
}

func (f *Fetcher) fail(err error, d time.Duration) {
	serr := &Error{Kind: KindFetchFailure, Err: err}
	f.logger.Error("building fetch failed", "error", serr, "duration", d)
	monitoring.RecordFetch("error", d)
	monitoring.RecordError("fetcher", serr.Kind.String())
	f.notifier.Notify(f.messages.FetchFailed(err))
}

// draw reconstructs the polygons and adds the new ones to the surface.
func (f *Fetcher) draw(ctx context.Context, elements []osm.Element) (drawn, dropped int) {
	res := buildings.Reconstruct(elements)

	for _, gap := range res.Gaps {
		f.logger.Debug("dropping way with missing node",
			"error", &Error{Kind: KindReconstructionGap, Err: fmt.Errorf("way %d: node %d not in response", gap.WayID, gap.MissingNode)},
		)
	}
	monitoring.RecordPolygons("missing_node", len(res.Gaps))
	monitoring.RecordPolygons("degenerate", len(res.Degenerate))

	duplicates := 0
	for _, p := range res.Polygons {
		// Get marks the way as recently seen
		if _, ok := f.drawn.Get(p.WayID); ok {
			duplicates++
			continue
		}

		polygon := p
		var id ShapeID
		id = f.surface.AddShape(polygon, StyleNeedsAttention, func() {
			if f.handler != nil {
				f.handler.Start(ctx, polygon, id)
			}
		})
		f.shapes++
		drawn++
		if f.handler != nil {
			f.handler.Drawn(polygon, id)
		}
		// may evict the least recently seen way
		f.drawn.Add(polygon.WayID, id)
	}

	monitoring.RecordPolygons("drawn", drawn)
	monitoring.RecordPolygons("duplicate", duplicates)
	monitoring.UpdateShapesOnMap(f.shapes)

	dropped = len(res.Gaps) + len(res.Degenerate)
	f.logger.Info("buildings drawn",
		"elements", len(elements),
		"drawn", drawn,
		"duplicates", duplicates,
		"dropped", dropped,
	)
	return drawn, dropped
}
