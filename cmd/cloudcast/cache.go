package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the offline weather cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached cities, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		cities := a.Cache.Cities()
		fmt.Fprintf(cmd.OutOrStdout(), "%d/%d cities cached\n", len(cities), a.Cache.Capacity())
		for _, c := range cities {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", c)
		}
		return nil
	},
}

var cacheSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove expired cache entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries\n", a.Foreground())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd, cacheSweepCmd)
	rootCmd.AddCommand(cacheCmd)
}
