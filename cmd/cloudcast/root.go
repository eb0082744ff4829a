package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/i474232898/cloudcast/internal/app"
	"github.com/i474232898/cloudcast/internal/config"
)

var (
	ephemeral bool
	dataPath  string
)

var rootCmd = &cobra.Command{
	Use:   "cloudcast",
	Short: "Weather dashboard service and CLI",
	Long: `cloudcast looks up current conditions and forecasts from OpenWeatherMap,
keeps recent cities available offline and syncs your preferences.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep all data in memory for this run")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "path of the local data file (overrides DATA_PATH)")
}

func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dataPath != "" {
		cfg.DataPath = dataPath
	}
	if ephemeral {
		cfg.DataPath = ""
	}
	return cfg, nil
}

func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}
