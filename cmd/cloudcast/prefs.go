package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/i474232898/cloudcast/internal/preferences"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change preferences",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return printJSON(cmd, a.Prefs.Current())
	},
}

var prefsSetCmd = &cobra.Command{
	Use:     "set key=value...",
	Short:   "Change preferences",
	Example: "  cloudcast prefs set temperature_unit=fahrenheit notifications_enabled=true\n  cloudcast prefs set favorite_cities=Paris,Tokyo",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := parsePairs(args)
		if err != nil {
			return err
		}
		patch, err := preferences.DecodePatch(input)
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		prefs, err := a.Prefs.Update(cmd.Context(), patch)
		if err != nil {
			return err
		}
		return printJSON(cmd, prefs)
	},
}

func parsePairs(args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	prefsCmd.AddCommand(prefsShowCmd, prefsSetCmd)
	rootCmd.AddCommand(prefsCmd)
}
