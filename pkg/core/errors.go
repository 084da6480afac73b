package core

import "errors"

// Common errors.
var (
	// ErrStoreUnavailable means a note-type, media, version or config store could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrDeployFailed means the asset could not be copied into the media store.
	ErrDeployFailed = errors.New("asset deploy failed")

	// ErrAssetMissing means the shipped asset is not where the release expects it.
	ErrAssetMissing = errors.New("asset source missing")
)
