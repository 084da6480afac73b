package core

import (
	"strings"

	"github.com/aretw0/typefield/pkg/marker"
)

// TypeDirective opens a typed-answer field in the host's template syntax,
// e.g. {{type:Back}} or {{type:cloze:Text}}.
const TypeDirective = "{{type:"

// IsTypedAnswer reports whether the question pattern asks for a typed answer.
// It is a plain, case-sensitive substring test: conditional sections are not
// evaluated, so a directive inside a section that never renders still counts.
func IsTypedAnswer(question string) bool {
	return strings.Contains(question, TypeDirective)
}

// Classify returns the action Annotate would take for a template.
func Classify(question, answer string) Action {
	typed := IsTypedAnswer(question)
	switch {
	case typed && marker.IsCanonicalOnly(answer):
		return ActionNone
	case typed && marker.Matches(answer):
		return ActionReplace
	case typed:
		return ActionInsert
	case marker.Matches(answer):
		return ActionRemove
	default:
		return ActionNone
	}
}

// Annotate returns the answer body with the marker tag present exactly once
// when the question is a typed-answer template and absent otherwise.
// changed is false when the body already satisfies that rule.
func Annotate(question, answer string) (string, bool) {
	switch Classify(question, answer) {
	case ActionInsert, ActionReplace:
		// Existing tags are stripped first so insertion never duplicates.
		return marker.Canonical() + marker.Separator + marker.Strip(answer), true
	case ActionRemove:
		return marker.Strip(answer), true
	default:
		return answer, false
	}
}

// Remove strips every marker from the answer body regardless of the question.
func Remove(_, answer string) (string, bool) {
	if !marker.Matches(answer) {
		return answer, false
	}
	return marker.Strip(answer), true
}
