package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// Profile entries.
const (
	CollectionFile = "collection.anki2"
	MediaDir       = "collection.media"
	LockFile       = ".typefield.lock"
)

// FindProfile looks upwards from startDir for a profile folder, recognised by
// a collection database or a media folder. It returns the absolute path.
func FindProfile(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, CollectionFile) || hasFile(dir, MediaDir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("profile not found from %s", abs)
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
