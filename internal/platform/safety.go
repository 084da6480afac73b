package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// IsDevRun checks if the current process is running via `go run` or `go test`.
// It relies on the fact that these commands build binaries in temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolveProfilePath re-roots profilePath into a temporary sandbox when
// forceTemp is set. Paths already inside the system temp directory are
// trusted as is.
func ResolveProfilePath(profilePath string, forceTemp bool) string {
	if !forceTemp {
		if profilePath == "" {
			return "."
		}
		return profilePath
	}

	clean := filepath.Clean(profilePath)
	rel, err := filepath.Rel(os.TempDir(), clean)
	if err == nil && !strings.HasPrefix(rel, "..") {
		return clean
	}

	name := filepath.Base(profilePath)
	if profilePath == "" || name == "." || name == string(os.PathSeparator) {
		name = "default"
	}
	return filepath.Join(os.TempDir(), "typefield-dev", name)
}
