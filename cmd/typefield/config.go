package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/typefield/pkg/core"
)

// configKeys maps each grading option to its field.
var configKeys = map[string]func(*core.Config) *bool{
	"enabled":             func(c *core.Config) *bool { return &c.Enabled },
	"ignore_case":         func(c *core.Config) *bool { return &c.IgnoreCase },
	"ignore_accents":      func(c *core.Config) *bool { return &c.IgnoreAccents },
	"ignore_punctuations": func(c *core.Config) *bool { return &c.IgnorePunctuations },
	"ignore_extra_words":  func(c *core.Config) *bool { return &c.IgnoreExtraWords },
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read or update the grading options",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the grading options as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := openInstance(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer inst.Close()

		c, err := inst.Service.Config(cmd.Context())
		if err != nil {
			return err
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(c)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY=BOOL...",
	Short: "Update grading options and republish them to the media folder",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := openInstance(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer inst.Close()

		c, err := inst.Service.Config(cmd.Context())
		if err != nil {
			return err
		}
		for _, arg := range args {
			if err := applyAssignment(&c, arg); err != nil {
				return err
			}
		}
		if err := inst.Service.SaveConfig(cmd.Context(), c); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", inst.Layout.ConfigFile)
		return nil
	},
}

func applyAssignment(c *core.Config, arg string) error {
	key, value, ok := strings.Cut(arg, "=")
	if !ok {
		return fmt.Errorf("expected KEY=BOOL, got %q", arg)
	}
	field, known := configKeys[strings.TrimSpace(key)]
	if !known {
		return fmt.Errorf("unknown option %q (known: %s)", key, strings.Join(knownKeys(), ", "))
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("option %s: %w", key, err)
	}
	*field(c) = b
	return nil
}

func knownKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
