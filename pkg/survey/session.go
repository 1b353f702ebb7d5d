package survey

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/NERVsystems/osmsurvey/pkg/address"
	"github.com/NERVsystems/osmsurvey/pkg/buildings"
	"github.com/NERVsystems/osmsurvey/pkg/monitoring"
	"github.com/NERVsystems/osmsurvey/pkg/osm"
	"github.com/NERVsystems/osmsurvey/pkg/tracing"
)

// SessionStatus is the tagging state of one building.
type SessionStatus int

const (
	Untagged SessionStatus = iota
	InProgress
	Submitted
)

func (s SessionStatus) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Submitted:
		return "submitted"
	default:
		return "untagged"
	}
}

// Session is the tagging state of one drawn building.
type Session struct {
	Polygon buildings.Polygon
	Shape   ShapeID
	Status  SessionStatus
}

// Sessions runs tagging sessions. Sessions on different buildings are
// independent of each other. Submitted and in-flight notes are tracked by
// way, so a building that is removed and drawn again keeps its state.
type Sessions struct {
	prompter  address.Prompter
	fields    []address.Field
	formatter address.Formatter
	notes     NoteSubmitter
	surface   MapSurface
	notifier  Notifier
	sched     Scheduler
	messages  *Messages
	logger    *slog.Logger

	byShape   map[ShapeID]*Session
	shapeOf   map[int64]ShapeID
	submitted map[int64]struct{}
	inFlight  map[int64]struct{}
}

// NewSessions creates the session manager.
func NewSessions(prompter address.Prompter, fields []address.Field, formatter address.Formatter, notes NoteSubmitter,
	surface MapSurface, notifier Notifier, sched Scheduler, messages *Messages, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sessions{
		prompter:  prompter,
		fields:    fields,
		formatter: formatter,
		notes:     notes,
		surface:   surface,
		notifier:  notifier,
		sched:     sched,
		messages:  messages,
		logger:    logger.With("component", "sessions"),
		byShape:   make(map[ShapeID]*Session),
		shapeOf:   make(map[int64]ShapeID),
		submitted: make(map[int64]struct{}),
		inFlight:  make(map[int64]struct{}),
	}
}

// Status returns the tagging state of a shape.
func (m *Sessions) Status(id ShapeID) SessionStatus {
	if s, ok := m.byShape[id]; ok {
		return s.Status
	}
	return Untagged
}

// Drawn implements ShapeHandler. A way whose note was already submitted
// is shown as confirmed.
func (m *Sessions) Drawn(p buildings.Polygon, id ShapeID) {
	m.shapeOf[p.WayID] = id
	if _, ok := m.submitted[p.WayID]; ok {
		m.byShape[id] = &Session{Polygon: p, Shape: id, Status: Submitted}
		m.surface.SetStyle(id, StyleConfirmed)
	}
}

// Removed implements ShapeHandler.
func (m *Sessions) Removed(wayID int64, id ShapeID) {
	delete(m.byShape, id)
	if m.shapeOf[wayID] == id {
		delete(m.shapeOf, wayID)
	}
}

// Start implements ShapeHandler. It must run on the loop: the
// questionnaire blocks it until the surveyor answers or cancels.
func (m *Sessions) Start(ctx context.Context, p buildings.Polygon, id ShapeID) {
	if _, ok := m.submitted[p.WayID]; ok {
		m.notifier.Notify(m.messages.AlreadySubmitted())
		return
	}
	if _, ok := m.inFlight[p.WayID]; ok {
		m.logger.Debug("note already being submitted", "way", p.WayID)
		return
	}

	s, ok := m.byShape[id]
	if !ok {
		s = &Session{Polygon: p, Shape: id}
	}
	s.Status = InProgress
	m.byShape[id] = s
	m.surface.SetStyle(id, StyleInProgress)

	answer, ok := address.Collect(m.prompter, m.fields)
	if !ok {
		m.logger.Info("tagging cancelled", "way", p.WayID, "error", &Error{Kind: KindInputCancelled})
		delete(m.byShape, id)
		m.surface.SetStyle(id, StyleNeedsAttention)
		monitoring.RecordSession("cancelled")
		return
	}

	m.submit(ctx, s, answer)
}

func (m *Sessions) submit(ctx context.Context, s *Session, answer address.Answer) {
	center := s.Polygon.Center()
	way := s.Polygon.WayID
	note := osm.Note{
		Lat:  center.Latitude,
		Lon:  center.Longitude,
		Text: m.formatter.Format(answer),
	}

	ctx, span := tracing.StartSpan(ctx, "survey.session",
		trace.WithAttributes(tracing.SessionAttributes(way, "submitting")...),
	)

	m.inFlight[way] = struct{}{}
	monitoring.ActiveSessions.Inc()
	m.logger.Info("submitting note", "way", way, "location", center.String())

	var err error
	m.sched.Go(func() {
		err = m.notes.CreateNote(ctx, note)
	}, func() {
		defer span.End()
		delete(m.inFlight, way)
		monitoring.ActiveSessions.Dec()

		if err != nil {
			// the shape stays in progress; another click retries
			serr := &Error{Kind: KindSubmissionFailure, Err: err}
			span.RecordError(err)
			span.SetStatus(codes.Error, "note submission failed")
			span.SetAttributes(tracing.SessionAttributes(way, "failed")...)
			m.logger.Error("note submission failed", "way", way, "error", serr)
			monitoring.RecordSession("failed")
			monitoring.RecordError("sessions", serr.Kind.String())
			m.notifier.Notify(m.messages.SubmitFailed(err))
			return
		}

		s.Status = Submitted
		m.submitted[way] = struct{}{}
		// the shape may have been removed and drawn again meanwhile
		if id, ok := m.shapeOf[way]; ok {
			if id != s.Shape {
				m.byShape[id] = &Session{Polygon: s.Polygon, Shape: id, Status: Submitted}
			}
			m.surface.SetStyle(id, StyleConfirmed)
		}
		span.SetAttributes(tracing.SessionAttributes(way, "submitted")...)
		m.logger.Info("note submitted", "way", way, "text", note.Text)
		monitoring.RecordSession("submitted")
	})
}
