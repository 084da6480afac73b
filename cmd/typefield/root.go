package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/typefield"
	"github.com/aretw0/typefield/internal/settings"
	"github.com/aretw0/typefield/pkg/core"
)

var (
	verbose      bool
	settingsPath string
	logFormat    string
	profileDir   string
	addonDir     string
	collection   string
	mediaDir     string
	noteTypeDir  string

	cfg = defaultSettings()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "typefield",
	Short: "Keep the smarter type-in-the-answer script wired into every typed card template",
	Long: `typefield inserts a script tag into the answer side of every card template
whose question asks for a typed answer, removes it everywhere else, and keeps
the script and its grading options deployed in the profile's media folder.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, _, _, err := settings.Load(settingsPath)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.Level()
		if verbose {
			level = slog.LevelDebug
		}
		format := cfg.Logging.Format
		if logFormat != "" {
			format = logFormat
		}

		opts := &slog.HandlerOptions{Level: level}
		var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
		if format == "json" {
			handler = slog.NewJSONHandler(os.Stderr, opts)
		}
		slog.SetDefault(slog.New(handler))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&settingsPath, "config", "", "Settings file (default ~/.config/typefield/config.toml or ./typefield.toml)")
	flags.StringVar(&logFormat, "log-format", "", "Log format: text or json")
	flags.StringVar(&profileDir, "profile", "", "Profile folder holding collection.anki2 and collection.media")
	flags.StringVar(&addonDir, "addon", "", "Add-on folder holding the script, VERSION and config.json")
	flags.StringVar(&collection, "collection", "", "Collection database (default <profile>/collection.anki2)")
	flags.StringVar(&mediaDir, "media", "", "Media folder (default <profile>/collection.media)")
	flags.StringVar(&noteTypeDir, "note-types", "", "Read note types from a directory of exported documents instead of the collection")
}

func defaultSettings() *settings.Settings {
	s := settings.Default()
	return &s
}

// openInstance resolves the profile from flags, settings and the working
// directory, in that order, and wires a service over it.
func openInstance(ctx context.Context, cmd *cobra.Command) (*typefield.Instance, error) {
	profile := pick(profileDir, cfg.Paths.ProfileDir)
	if profile == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		found, err := typefield.FindProfile(wd)
		if err != nil {
			return nil, fmt.Errorf("no profile given and %w", err)
		}
		profile = found
	}

	opts := []typefield.Option{
		typefield.WithLogger(slog.Default()),
		typefield.WithNotifier(core.NotifierFunc(func(msg string) {
			fmt.Fprintln(cmd.ErrOrStderr(), msg)
		})),
	}
	if dir := pick(addonDir, cfg.Paths.AddonDir); dir != "" {
		opts = append(opts, typefield.WithAddonDir(dir))
	}
	if path := pick(collection, cfg.Paths.Collection); path != "" {
		opts = append(opts, typefield.WithCollection(path))
	}
	if dir := pick(mediaDir, cfg.Paths.MediaDir); dir != "" {
		opts = append(opts, typefield.WithMediaDir(dir))
	}
	if dir := pick(noteTypeDir, cfg.Paths.NoteTypeDir); dir != "" {
		opts = append(opts, typefield.WithNoteTypeDir(dir))
	}

	return typefield.Open(ctx, profile, opts...)
}

func pick(flag, setting string) string {
	if flag != "" {
		return flag
	}
	return setting
}
