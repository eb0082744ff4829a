package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage the OpenWeatherMap API key",
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set <api-key>",
	Short: "Save the API key on this device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SetAPIKey(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ API key saved")
		return nil
	},
}

func init() {
	credentialsCmd.AddCommand(credentialsSetCmd)
	rootCmd.AddCommand(credentialsCmd)
}
