package validation

import (
	"sort"
	"strings"
)

// Errors maps field names to the message shown next to the field.
type Errors map[string]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range e.Fields() {
		parts = append(parts, field+": "+e[field])
	}
	return "invalid registration: " + strings.Join(parts, "; ")
}

// Fields returns the names of the invalid fields in sorted order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}
