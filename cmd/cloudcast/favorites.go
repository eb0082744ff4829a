package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage favorite cities",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorite cities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		favs := a.Prefs.Current().FavoriteCities
		if len(favs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No favorite cities yet.")
			return nil
		}
		for _, c := range favs {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <city>",
	Short: "Add a favorite city",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.Prefs.AddFavorite(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is a favorite\n", args[0])
		return nil
	},
}

var favoritesRemoveCmd = &cobra.Command{
	Use:     "remove <city>",
	Aliases: []string{"rm"},
	Short:   "Remove a favorite city",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.Prefs.RemoveFavorite(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s removed from favorites\n", args[0])
		return nil
	},
}

func init() {
	favoritesCmd.AddCommand(favoritesListCmd, favoritesAddCmd, favoritesRemoveCmd)
	rootCmd.AddCommand(favoritesCmd)
}
