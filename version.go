package typefield

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var rawVersion string

// Version is the release shipped with this build. The version gate compares it
// with the one recorded in the add-on folder.
var Version = strings.TrimSpace(rawVersion)
