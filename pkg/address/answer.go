// Package address collects a building's address from the surveyor and turns
// it into note text.
package address

// Field keys of the default questionnaire.
const (
	FieldNumber  = "number"
	FieldStreet  = "street"
	FieldLevels  = "levels"
	FieldComment = "comment"
)

// Answer maps field keys to trimmed, non-empty values and remembers the
// order in which fields were set. The zero value is an empty answer.
type Answer struct {
	keys   []string
	values map[string]string
}

// Set stores value under key. Re-setting a key keeps its original position.
func (a *Answer) Set(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Get returns the value stored under key.
func (a Answer) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (a Answer) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Len returns the number of fields present.
func (a Answer) Len() int {
	return len(a.keys)
}
