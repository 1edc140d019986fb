package reviews

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrInvalidSubmission indicates a submission or record that fails validation.
	ErrInvalidSubmission = errors.New("reviews: invalid submission")
	// ErrPersist indicates the backing store rejected a write.
	ErrPersist = errors.New("reviews: persist failed")
)

// Field validation reasons reported by ValidationError.
const (
	ReasonRequired   = "required"
	ReasonTooLong    = "too_long"
	ReasonOutOfRange = "out_of_range"
)

// ValidationError reports which submission fields were rejected and why.
type ValidationError struct {
	fields map[string]string
}

func (e *ValidationError) add(field, reason string) {
	if e.fields == nil {
		e.fields = make(map[string]string)
	}
	e.fields[field] = reason
}

func (e *ValidationError) empty() bool {
	return len(e.fields) == 0
}

// Fields returns a copy of the field to reason map.
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.fields))
	for k, v := range e.fields {
		out[k] = v
	}
	return out
}

// Has reports whether field was rejected.
func (e *ValidationError) Has(field string) bool {
	_, ok := e.fields[field]
	return ok
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.fields[k])
	}
	return ErrInvalidSubmission.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidSubmission
}
