package model

import (
	"sort"
	"strings"
)

// ValidationError carries field-level messages for a rejected step. Fields
// are keyed by dotted JSON path ("assistance.0"); the empty key holds
// messages that apply to the whole payload.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
	Step   string            `json:"step"`
}

// NewValidationError creates an empty validation error for step.
func NewValidationError(step string) *ValidationError {
	return &ValidationError{Step: step, Fields: map[string]string{}}
}

// Add records msg for field, keeping the first message per field.
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// HasErrors reports whether any message was recorded.
func (e *ValidationError) HasErrors() bool { return len(e.Fields) > 0 }

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			parts = append(parts, e.Fields[k])
			continue
		}
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid " + e.Step + ": " + strings.Join(parts, "; ")
}
