package address

import (
	"golang.org/x/text/language"
)

// Locale carries the wording used to ask for and format an address.
type Locale struct {
	Tag         language.Tag
	HouseNumber string
	Floors      Words
	Plural      PluralRule
	Fields      []Field
}

// Russian is the default locale.
var Russian = Locale{
	Tag:         language.Russian,
	HouseNumber: "дом № ",
	Floors:      Words{One: "этаж", Few: "этажа", Many: "этажей"},
	Plural:      RussianPlural,
	Fields: []Field{
		{Key: FieldNumber, Label: "Номер дома"},
		{Key: FieldStreet, Label: "Улица"},
		{Key: FieldLevels, Label: "Количество этажей"},
		{Key: FieldComment, Label: "Комментарий"},
	},
}

// English locale.
var English = Locale{
	Tag:         language.English,
	HouseNumber: "house № ",
	Floors:      Words{One: "floor", Few: "floors", Many: "floors"},
	Plural:      EnglishPlural,
	Fields: []Field{
		{Key: FieldNumber, Label: "House number"},
		{Key: FieldStreet, Label: "Street"},
		{Key: FieldLevels, Label: "Number of floors"},
		{Key: FieldComment, Label: "Comment"},
	},
}

var (
	locales = []Locale{Russian, English}
	matcher = language.NewMatcher([]language.Tag{language.Russian, language.English})
)

// MatchLocale returns the supported locale closest to pref, a BCP 47 tag or
// an Accept-Language style list. Unknown or empty preferences get Russian.
func MatchLocale(pref string) Locale {
	tags, _, err := language.ParseAcceptLanguage(pref)
	if err != nil || len(tags) == 0 {
		return Russian
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Russian
	}
	return locales[idx]
}
