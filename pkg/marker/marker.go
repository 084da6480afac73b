// Package marker defines the script tag injected into answer templates and
// recognizes every form of it that has ever been shipped.
//
// Recognition is a closed list (see Forms): a form dropped from the
// list can no longer be replaced or removed, so entries are only ever appended.
package marker

import (
	"regexp"
	"strings"
)

const (
	// AssetName is the media file the canonical tag loads.
	AssetName = "_smarterTypeField.min.js"

	// RemoteAsset is loaded by the tag when AssetName is missing from the media folder.
	RemoteAsset = "https://derdemystifier.github.io/AnkiIgnoreCase/smarterTypeField.min.js"

	// Separator follows the tag when it is inserted at the top of a template.
	Separator = "\n\n"
)

// canonical is the exact fragment inserted into typed-answer templates.
// data-config is empty so the script resolves its snapshot as _smarterTypeField.config.json.
const canonical = `<script role='smarterTypeField' src="` + AssetName + `" data-config="" ` +
	`onerror="var script=document.createElement('script');script.src='` + RemoteAsset +
	`';document.head.appendChild(script);"></script>`

// Form is one historical encoding of the tag.
type Form struct {
	// Name identifies the release generation that shipped the form.
	Name string
	// Role is the value of the role attribute, the stable identifier of the tag.
	Role string
	// Asset is the media file that generation loaded.
	Asset string

	pattern *regexp.Regexp
}

// Match reports whether the form occurs in text.
func (f Form) Match(text string) bool {
	return f.pattern.MatchString(text)
}

// Count returns the number of occurrences of the form in text.
func (f Form) Count(text string) int {
	return len(f.pattern.FindAllStringIndex(text, -1))
}

func (f Form) remove(text string) string {
	return f.pattern.ReplaceAllString(text, "")
}

func newForm(name, role, asset string) Form {
	// From the opening tag through the first closing tag, case-insensitive and
	// across lines, plus the blank-line separator inserted after it.
	expr := `(?is)<script\s+role\s*=\s*['"]` + regexp.QuoteMeta(role) + `['"].*?</script\s*>(?:[ \t]*\r?\n){0,2}`
	return Form{
		Name:    name,
		Role:    role,
		Asset:   asset,
		pattern: regexp.MustCompile(expr),
	}
}

var forms = []Form{
	newForm("ignoreCase", "ignoreCase", "_ignoreCase.min.js"),
	newForm("smarterTypeField", "smarterTypeField", AssetName),
}

// Canonical returns the tag inserted by the current release.
func Canonical() string {
	return canonical
}

// Forms returns every recognized form, oldest first.
func Forms() []Form {
	out := make([]Form, len(forms))
	copy(out, forms)
	return out
}

// Matches reports whether any recognized form occurs anywhere in text.
func Matches(text string) bool {
	for _, f := range forms {
		if f.Match(text) {
			return true
		}
	}
	return false
}

// Count returns the total number of recognized occurrences in text.
func Count(text string) int {
	n := 0
	for _, f := range forms {
		n += f.Count(text)
	}
	return n
}

// IsCanonicalOnly reports whether text holds exactly one occurrence and that
// occurrence is the canonical tag, byte for byte.
func IsCanonicalOnly(text string) bool {
	return Count(text) == 1 && strings.Contains(text, canonical)
}

// Strip removes every recognized occurrence from text and trims surrounding whitespace.
func Strip(text string) string {
	for _, f := range forms {
		text = f.remove(text)
	}
	return strings.TrimSpace(text)
}
