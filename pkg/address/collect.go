package address

import "strings"

// Field is one question of the questionnaire.
type Field struct {
	Key   string
	Label string
}

// Prompt is the text shown to the surveyor for f.
func (f Field) Prompt() string {
	return f.Label + " = ?"
}

// Prompter asks the surveyor a question. ok is false when the surveyor
// cancelled instead of answering; an empty answer is not a cancel.
type Prompter interface {
	Ask(label string) (text string, ok bool)
}

// Collect asks every field in order. A cancel on any field aborts the whole
// collection and discards earlier answers. Answers that trim to empty are
// left out. ok is false on cancel and when no field was answered at all.
func Collect(p Prompter, fields []Field) (Answer, bool) {
	var a Answer
	for _, f := range fields {
		text, ok := p.Ask(f.Prompt())
		if !ok {
			return Answer{}, false
		}
		if v := strings.TrimSpace(text); v != "" {
			a.Set(f.Key, v)
		}
	}
	if a.Len() == 0 {
		return Answer{}, false
	}
	return a, true
}
