package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/typefield/pkg/core"
)

var runJSON bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the session-start pass: deploy the script if needed and annotate templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		inst, err := openInstance(ctx, cmd)
		if err != nil {
			return err
		}
		defer inst.Close()

		report, runErr := inst.Service.OnSessionStart(ctx)
		if err := printReport(cmd.OutOrStdout(), report, runJSON); err != nil {
			return err
		}
		return runErr
	},
}

func printReport(w io.Writer, report core.SessionReport, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	deployed := "up to date"
	if report.Deployed {
		deployed = "deployed"
	}
	fmt.Fprintf(w, "version %s: %s\n", report.CurrentVersion, deployed)
	fmt.Fprintf(w, "%d note types, %d templates, %d changed\n",
		report.Scan.NoteTypes, report.Scan.Templates, report.Scan.Changed)
	for _, name := range report.Scan.Mutated {
		fmt.Fprintf(w, "  updated %s\n", name)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Output the session report as JSON")
}
