package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/aretw0/typefield/pkg/core"
)

// AcquireLock takes the exclusive advisory lock of a profile without waiting.
// A lock held by another process is reported as core.ErrStoreUnavailable.
func AcquireLock(profileDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(profileDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create profile: %w", core.ErrStoreUnavailable, err)
	}

	lock := flock.New(filepath.Join(profileDir, LockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: lock profile: %w", core.ErrStoreUnavailable, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: profile %s is in use", core.ErrStoreUnavailable, profileDir)
	}
	return lock, nil
}
