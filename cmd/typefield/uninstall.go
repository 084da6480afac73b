package main

import (
	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the marker from every template and the script from the media folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		inst, err := openInstance(ctx, cmd)
		if err != nil {
			return err
		}
		defer inst.Close()

		report, err := inst.Service.Uninstall(ctx)
		if err != nil {
			return err
		}
		return printReport(cmd.OutOrStdout(), report, false)
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
