package survey

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/NERVsystems/osmsurvey/pkg/geo"
)

func TestKindOf(t *testing.T) {
	inner := &LocationError{Code: Timeout, Message: "Timeout expired"}
	err := fmt.Errorf("tick: %w", &Error{Kind: KindLocationUnavailable, Err: inner})

	if KindOf(err) != KindLocationUnavailable {
		t.Errorf("KindOf = %v", KindOf(err))
	}
	var le *LocationError
	if !errors.As(err, &le) || le.Code != Timeout {
		t.Errorf("LocationError not reachable through %v", err)
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Error("plain error has a kind")
	}
	if got := (&Error{Kind: KindInputCancelled}).Error(); got != "input_cancelled" {
		t.Errorf("Error() = %q", got)
	}
}

func TestMessages(t *testing.T) {
	ru := NewMessages(language.Russian)
	en := NewMessages(language.English)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"location error ru", ru.LocationError(PermissionDenied, "denied"), "Error 1: denied :("},
		{"location error en", en.LocationError(Timeout, "Timeout expired"), "Error 3: Timeout expired :("},
		{"fetch ru", ru.FetchFailed(errors.New("boom")), "Не удалось загрузить здания: boom"},
		{"fetch en", en.FetchFailed(errors.New("boom")), "Could not load buildings: boom"},
		{"already en", en.AlreadySubmitted(), "A note for this building has already been submitted."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}

	if msg := en.LowAccuracy(42); !strings.Contains(msg, "Current accuracy: 42 m") {
		t.Errorf("LowAccuracy = %q", msg)
	}
}

func TestCatalogueBuilds(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("catalogue construction panicked: %v", r)
		}
	}()
	if langs := mustCatalogue().Languages(); len(langs) != 2 {
		t.Errorf("catalogue languages = %v", langs)
	}
}

func TestStyleColors(t *testing.T) {
	want := map[Style]string{
		StyleNeedsAttention: "red",
		StyleInProgress:     "orange",
		StyleConfirmed:      "green",
	}
	for s, c := range want {
		if s.Color() != c {
			t.Errorf("%v.Color() = %q, want %q", s, s.Color(), c)
		}
	}
}

func TestFetchStateStartsNowhere(t *testing.T) {
	s := NewFetchState()
	p := geo.Location{Latitude: 55.75, Longitude: 37.61}

	if !s.Origin().IsNowhere() {
		t.Fatalf("new state origin = %v", s.Origin())
	}
	if d := s.DistanceFrom(p); !math.IsInf(d, 1) {
		t.Errorf("distance before the first fetch = %v, want +Inf", d)
	}

	s.SetOrigin(p)
	if d := s.DistanceFrom(p); d != 0 {
		t.Errorf("distance to the origin = %v", d)
	}
}
