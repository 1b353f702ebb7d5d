package survey

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/NERVsystems/osmsurvey/pkg/address"
)

// Deps are the collaborators a Survey talks to.
type Deps struct {
	Provider  LocationProvider
	Source    BuildingSource
	Notes     NoteSubmitter
	Surface   MapSurface
	Notifier  Notifier
	Prompter  address.Prompter
	Scheduler Scheduler
	Logger    *slog.Logger
}

// Settings configure a Survey.
type Settings struct {
	Tracker        TrackerConfig
	DrawnCacheSize int
	Locale         address.Locale
	Formatter      address.Formatter
}

// Survey wires the tracker, fetcher and tagging sessions around one
// FetchState.
type Survey struct {
	State    *FetchState
	Tracker  *Tracker
	Fetcher  *Fetcher
	Sessions *Sessions
}

// New builds a survey. Nothing runs until Start.
func New(deps Deps, settings Settings) (*Survey, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	formatter := settings.Formatter
	if formatter == nil {
		formatter = address.ComposedFormatter{Locale: settings.Locale}
	}
	tag := settings.Locale.Tag
	if tag == language.Und {
		tag = language.Russian
	}
	messages := NewMessages(tag)
	state := NewFetchState()

	fetcher, err := NewFetcher(settings.Tracker.FetchRadius, settings.DrawnCacheSize, deps.Source, state,
		deps.Surface, deps.Notifier, deps.Scheduler, messages, logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}

	sessions := NewSessions(deps.Prompter, settings.Locale.Fields, formatter, deps.Notes,
		deps.Surface, deps.Notifier, deps.Scheduler, messages, logger)
	fetcher.Handle(sessions)

	tracker := NewTracker(settings.Tracker, deps.Provider, fetcher, state,
		deps.Surface, deps.Notifier, deps.Scheduler, messages, logger)

	return &Survey{
		State:    state,
		Tracker:  tracker,
		Fetcher:  fetcher,
		Sessions: sessions,
	}, nil
}

// Start begins location polling.
func (s *Survey) Start(ctx context.Context) {
	s.Tracker.Start(ctx)
}
