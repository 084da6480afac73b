package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/typefield"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of typefield",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "typefield version %s\n", typefield.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
