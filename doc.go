// Package typefield is the composition root for typefield.
//
// It connects the core domain (marker annotation, version gate, asset
// deployment) with the storage adapters using the hexagonal layout: the
// collection database or a directory of exported note types, the profile's
// media folder, and the add-on folder holding VERSION and config.json.
//
// On every session start the service:
//
//   - redeploys the script asset into the media folder when the recorded
//     version differs from the running one,
//   - copies the grading options into the media folder for clients that
//     cannot run the add-on,
//   - inserts the marker tag into every answer template whose question asks
//     for a typed answer, and removes it everywhere else.
//
// Usage:
//
//	inst, err := typefield.Open(ctx, profileDir,
//		typefield.WithAddonDir(addonDir),
//		typefield.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	defer inst.Close()
//
//	report, err := inst.Service.OnSessionStart(ctx)
package typefield
