package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/aretw0/typefield/pkg/core"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Show what a run would do to each template, without writing anything",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := openInstance(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer inst.Close()

		statuses, err := inst.Service.Inspect(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if checkJSON {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(statuses)
		}

		fmt.Fprintln(out, renderStatusTable(statuses, isTerminal(out)))
		pending := 0
		for _, s := range statuses {
			if s.Action != core.ActionNone {
				pending++
			}
		}
		fmt.Fprintf(out, "%d of %d templates would change\n", pending, len(statuses))
		return nil
	},
}

func renderStatusTable(statuses []core.TemplateStatus, terminal bool) string {
	tw := table.NewWriter()
	if terminal {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	tw.AppendHeader(table.Row{"Note type", "Template", "Typed", "Tags", "Action"})
	for _, s := range statuses {
		typed := "no"
		if s.Typed {
			typed = "yes"
		}
		tw.AppendRow(table.Row{s.NoteType, s.Template, typed, strconv.Itoa(s.Tags), string(s.Action)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output the template statuses as JSON")
}
