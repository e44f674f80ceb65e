// Package transform holds the closed set of value transforms a field mapping
// may name. Unknown names leave the value untouched.
package transform

import (
	"strings"

	"alertdesk.app/intake/internal/jsonpath"
	"alertdesk.app/intake/internal/model"
)

type Name string

const (
	Uppercase          Name = "uppercase"
	Lowercase          Name = "lowercase"
	Trim               Name = "trim"
	SeverityToPriority Name = "severity_to_priority"
)

type Func func(string) string

var registry = map[Name]Func{
	Uppercase:          strings.ToUpper,
	Lowercase:          strings.ToLower,
	Trim:               strings.TrimSpace,
	SeverityToPriority: severityToPriority,
}

var severityTable = map[string]model.Priority{
	"critical":      model.PriorityCritical,
	"high":          model.PriorityHigh,
	"major":         model.PriorityHigh,
	"warning":       model.PriorityMedium,
	"medium":        model.PriorityMedium,
	"minor":         model.PriorityLow,
	"low":           model.PriorityLow,
	"info":          model.PriorityLow,
	"informational": model.PriorityLow,
}

// Names lists the recognised transform names.
func Names() []Name {
	return []Name{Uppercase, Lowercase, Trim, SeverityToPriority}
}

func IsKnown(name Name) bool {
	_, ok := registry[name]
	return ok
}

// Apply runs the named transform on v. Absent or empty input, an empty name
// and unknown names all return v unchanged. Non-string input is stringified
// before a known transform runs.
func Apply(name Name, v any) any {
	if v == nil || name == "" {
		return v
	}
	fn, ok := registry[name]
	if !ok {
		return v
	}

	s := jsonpath.String(v)
	if s == "" {
		return v
	}
	return fn(s)
}

func severityToPriority(severity string) string {
	if p, ok := severityTable[strings.ToLower(strings.TrimSpace(severity))]; ok {
		return string(p)
	}
	return string(model.PriorityMedium)
}
