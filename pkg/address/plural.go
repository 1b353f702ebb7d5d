package address

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

// PluralForm is a grammatical number category.
type PluralForm int

const (
	PluralOne PluralForm = iota
	PluralFew
	PluralMany
)

func (f PluralForm) String() string {
	switch f {
	case PluralOne:
		return "one"
	case PluralFew:
		return "few"
	default:
		return "many"
	}
}

// PluralRule picks the plural form for a count.
type PluralRule func(n int) PluralForm

// RussianPlural implements Russian numeral agreement: 5-20 (mod 100) take
// the many form, then 1 (mod 10) one, 2-4 (mod 10) few, everything else many.
func RussianPlural(n int) PluralForm {
	n %= 100
	if n >= 5 && n <= 20 {
		return PluralMany
	}
	switch n % 10 {
	case 1:
		return PluralOne
	case 2, 3, 4:
		return PluralFew
	}
	return PluralMany
}

// EnglishPlural uses the CLDR cardinal rules for English, which only
// distinguish one from other.
func EnglishPlural(n int) PluralForm {
	if n < 0 {
		n = -n
	}
	if plural.Cardinal.MatchPlural(language.English, n, 0, 0, 0, 0) == plural.One {
		return PluralOne
	}
	return PluralMany
}

// Words holds a noun in each plural form.
type Words struct {
	One  string
	Few  string
	Many string
}

// For returns the word for form.
func (w Words) For(form PluralForm) string {
	switch form {
	case PluralOne:
		return w.One
	case PluralFew:
		return w.Few
	default:
		return w.Many
	}
}
