package survey

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys double as the English text.
const (
	msgLowAccuracy = "Unfortunately your device could not determine its location precisely enough. " +
		"Current accuracy: %v m. " +
		"Please make sure location services (GPS) are enabled for this application. " +
		"If they are, try moving to a more open space."
	msgLocationError = "Error %d: %s :("
	msgFetchFailed   = "Could not load buildings: %s"
	msgSubmitFailed  = "Could not submit the note, tap the building to try again: %s"
	msgAlreadyDone   = "A note for this building has already been submitted."
)

var catalogue = mustCatalogue()

// mustCatalogue builds the message catalogue. The entries are static, so a
// failure is a programming error.
func mustCatalogue() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	var errs []error
	set := func(tag language.Tag, key, msg string) {
		if err := b.SetString(tag, key, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", tag, key, err))
		}
	}

	for _, key := range []string{msgLowAccuracy, msgLocationError, msgFetchFailed, msgSubmitFailed, msgAlreadyDone} {
		set(language.English, key, key)
	}

	set(language.Russian, msgLowAccuracy,
		"К сожалению, ваше устройство не смогло достаточно точно определить своё местоположение. "+
			"Текущая точность: %v м. "+
			"Пожалуйста, убедитесь, что службы геолокации (GPS) включены для этого браузера. "+
			"Если это так, попробуйте выйти на более открытое пространство.")
	set(language.Russian, msgLocationError, "Error %d: %s :(")
	set(language.Russian, msgFetchFailed, "Не удалось загрузить здания: %s")
	set(language.Russian, msgSubmitFailed, "Не удалось отправить заметку, нажмите на здание ещё раз: %s")
	set(language.Russian, msgAlreadyDone, "Заметка для этого здания уже отправлена.")

	if err := errors.Join(errs...); err != nil {
		panic("survey: build message catalogue: " + err.Error())
	}
	return b
}

// Messages renders user-facing notifications in one language.
type Messages struct {
	p *message.Printer
}

// NewMessages returns messages for tag, falling back to English.
func NewMessages(tag language.Tag) *Messages {
	return &Messages{p: message.NewPrinter(tag, message.Catalog(catalogue))}
}

// LowAccuracy is shown when a fix is too imprecise to use.
func (m *Messages) LowAccuracy(accuracy float64) string {
	return m.p.Sprintf(msgLowAccuracy, accuracy)
}

// LocationError is shown when the provider fails.
func (m *Messages) LocationError(code LocationErrorCode, msg string) string {
	return m.p.Sprintf(msgLocationError, int(code), msg)
}

// FetchFailed is shown when the building query fails.
func (m *Messages) FetchFailed(err error) string {
	return m.p.Sprintf(msgFetchFailed, err.Error())
}

// SubmitFailed is shown when a note could not be posted.
func (m *Messages) SubmitFailed(err error) string {
	return m.p.Sprintf(msgSubmitFailed, err.Error())
}

// AlreadySubmitted is shown on a click on a confirmed building.
func (m *Messages) AlreadySubmitted() string {
	return m.p.Sprintf(msgAlreadyDone)
}
