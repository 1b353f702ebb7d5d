package survey

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/NERVsystems/osmsurvey/pkg/geo"
	"github.com/NERVsystems/osmsurvey/pkg/monitoring"
	"github.com/NERVsystems/osmsurvey/pkg/tracing"
)

// TrackerConfig controls position polling.
type TrackerConfig struct {
	CheckInterval time.Duration
	Timeout       time.Duration
	MaximumAge    time.Duration
	HighAccuracy  bool

	// MaxAccuracy is the worst accuracy, in metres, a fix may have and
	// still be used
	MaxAccuracy float64

	// FetchRadius is how far the surveyor must move from the last fetch
	// origin before buildings are fetched again
	FetchRadius float64

	// MaxZoom is the zoom the map is centred at on every usable fix
	MaxZoom int
}

// FetchTrigger starts a building fetch around a point.
type FetchTrigger interface {
	FetchAround(ctx context.Context, p geo.Location) error
}

// Tracker polls the location provider. Each request is issued only after
// the previous one resolved, and the next one is scheduled CheckInterval
// later whatever the outcome.
type Tracker struct {
	cfg      TrackerConfig
	provider LocationProvider
	fetcher  FetchTrigger
	state    *FetchState
	surface  MapSurface
	notifier Notifier
	sched    Scheduler
	messages *Messages
	logger   *slog.Logger

	current geo.Location
	running bool
}

// NewTracker creates a tracker. It does nothing until Start.
func NewTracker(cfg TrackerConfig, provider LocationProvider, fetcher FetchTrigger, state *FetchState,
	surface MapSurface, notifier Notifier, sched Scheduler, messages *Messages, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		cfg:      cfg,
		provider: provider,
		fetcher:  fetcher,
		state:    state,
		surface:  surface,
		notifier: notifier,
		sched:    sched,
		messages: messages,
		logger:   logger.With("component", "tracker"),
		current:  geo.Nowhere,
	}
}

// Start posts the first position request. Polling stops when ctx is done.
func (t *Tracker) Start(ctx context.Context) {
	t.sched.Post(func() {
		if t.running {
			return
		}
		t.running = true
		t.check(ctx)
	})
}

// Current returns the last usable fix, or geo.Nowhere.
func (t *Tracker) Current() geo.Location {
	return t.current
}

func (t *Tracker) check(ctx context.Context) {
	if ctx.Err() != nil {
		t.running = false
		return
	}

	opts := PositionOptions{
		HighAccuracy: t.cfg.HighAccuracy,
		Timeout:      t.cfg.Timeout,
		MaximumAge:   t.cfg.MaximumAge,
	}

	var (
		fix Fix
		err error
	)
	t.sched.Go(func() {
		fix, err = t.locate(ctx, opts)
	}, func() {
		if ctx.Err() != nil {
			t.running = false
			return
		}
		if err != nil {
			t.handleError(err)
		} else {
			t.handleFix(ctx, fix)
		}
		t.sched.After(t.cfg.CheckInterval, func() { t.check(ctx) })
	})
}

// locate runs off the loop and bounds the request by the configured timeout.
func (t *Tracker) locate(ctx context.Context, opts PositionOptions) (Fix, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	fix, err := t.provider.CurrentPosition(ctx, opts)
	if err == nil {
		return fix, nil
	}

	var le *LocationError
	switch {
	case errors.As(err, &le):
		return Fix{}, le
	case errors.Is(err, context.DeadlineExceeded):
		return Fix{}, &LocationError{Code: Timeout, Message: "Timeout expired"}
	default:
		return Fix{}, &LocationError{Code: PositionUnavailable, Message: err.Error()}
	}
}

func (t *Tracker) handleError(err error) {
	var le *LocationError
	if !errors.As(err, &le) {
		le = &LocationError{Code: PositionUnavailable, Message: err.Error()}
	}

	serr := &Error{Kind: KindLocationUnavailable, Err: le}
	t.logger.Warn("location unavailable", "code", le.Code, "error", serr)
	monitoring.RecordLocationFix("error", 0)
	monitoring.RecordError("tracker", serr.Kind.String())
	t.notifier.Notify(t.messages.LocationError(le.Code, le.Message))
}

func (t *Tracker) handleFix(ctx context.Context, fix Fix) {
	if fix.Accuracy > t.cfg.MaxAccuracy {
		serr := &Error{Kind: KindLowAccuracy, Err: &ErrLowAccuracy{Accuracy: fix.Accuracy, Limit: t.cfg.MaxAccuracy}}
		t.logger.Info("ignoring imprecise fix", "accuracy", fix.Accuracy, "error", serr)
		monitoring.RecordLocationFix("low_accuracy", fix.Accuracy)
		t.notifier.Notify(t.messages.LowAccuracy(fix.Accuracy))
		return
	}

	monitoring.RecordLocationFix("accepted", fix.Accuracy)
	t.surface.CenterOn(fix.Point, t.cfg.MaxZoom)

	distance := t.state.DistanceFrom(fix.Point)
	t.logger.Debug("fix accepted",
		"location", fix.Point.String(),
		"accuracy", fix.Accuracy,
		"distance_from_origin", distance,
	)

	if distance > t.cfg.FetchRadius {
		ctx, span := tracing.StartSpan(ctx, "survey.fix",
			trace.WithAttributes(tracing.LocationAttributes(fix.Point.Latitude, fix.Point.Longitude, fix.Accuracy)...),
		)
		if err := t.fetcher.FetchAround(ctx, fix.Point); err != nil {
			t.logger.Debug("fetch not started", "error", err)
		}
		span.End()
	}

	t.current = fix.Point
}
