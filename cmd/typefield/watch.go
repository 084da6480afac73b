package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/typefield/pkg/adapters/fs"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Republish the grading options whenever config.json changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		inst, err := openInstance(ctx, cmd)
		if err != nil {
			return err
		}
		defer inst.Close()

		if err := inst.Service.PropagateConfig(ctx); err != nil {
			return err
		}

		path := inst.Layout.ConfigFile
		watcher := fs.NewConfigWatcher(path, func(ctx context.Context) error {
			if err := inst.Service.PropagateConfig(ctx); err != nil {
				return err
			}
			slog.Info("config republished", "path", path)
			return nil
		}, slog.Default())

		if err := watcher.Start(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "watching %s (Ctrl+C to stop)\n", path)

		watcher.Wait()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
