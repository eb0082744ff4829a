package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/i474232898/cloudcast/internal/preferences"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <user-uuid>",
	Short: "Mint a development session token signed with SESSION_SECRET",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.SessionSecret == "" {
			return errors.New("SESSION_SECRET is not set")
		}

		token, err := preferences.IssueSessionToken(userID, []byte(cfg.SessionSecret), tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
