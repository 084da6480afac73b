package typefield_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aretw0/typefield"
	"github.com/aretw0/typefield/pkg/marker"
)

// Example_sessionStart annotates a directory of exported note types and
// deploys the script into a fresh profile.
func Example_sessionStart() {
	tmpDir, err := os.MkdirTemp("", "typefield-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	profile := filepath.Join(tmpDir, "User 1")
	addon := filepath.Join(tmpDir, "addon")
	notes := filepath.Join(tmpDir, "notetypes")
	for _, dir := range []string{profile, addon, notes} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal(err)
		}
	}

	if err := os.WriteFile(filepath.Join(addon, marker.AssetName), []byte("/* script */"), 0644); err != nil {
		log.Fatal(err)
	}
	noteType := `{"id": 1, "name": "Basic (type in the answer)", "tmpls": [
		{"name": "Card 1", "ord": 0, "qfmt": "{{Front}} {{type:Back}}", "afmt": "{{FrontSide}}"}
	]}`
	if err := os.WriteFile(filepath.Join(notes, "1.json"), []byte(noteType), 0644); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	inst, err := typefield.Open(ctx, profile,
		typefield.WithAddonDir(addon),
		typefield.WithNoteTypeDir(notes),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer inst.Close()

	report, err := inst.Service.OnSessionStart(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("deployed: %v, templates changed: %d\n", report.Deployed, report.Scan.Changed)
	// Output:
	// deployed: true, templates changed: 1
}
