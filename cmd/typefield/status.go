package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the resolved layout and service state as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := openInstance(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer inst.Close()

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]any{
			"layout":  inst.Layout,
			"service": inst.Service.State(),
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
