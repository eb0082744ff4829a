package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/cloudcast/internal/api/http"
	"github.com/i474232898/cloudcast/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the favorites refresh job",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		cfg := a.Config

		if removed := a.Foreground(); removed > 0 {
			log.Printf("INFO: removed %d expired cache entries at startup", removed)
		}
		if !a.HasAPIKey() {
			log.Println("WARN: no OpenWeatherMap API key configured; set one with PUT /api/v1/credentials")
		}

		// Scheduler that periodically refreshes favorite cities.
		sched := scheduler.New(a.Weather, a.Prefs, scheduler.LogNotifier{}, cfg.RefreshInterval)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()

		app := httpapi.NewApp(2 * cfg.HTTPTimeout)

		// Global middleware
		app.Use(logger.New())
		app.Use(recover.New())

		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"status":  "ok",
				"service": "cloudcast",
				"apiKey":  a.HasAPIKey(),
			})
		})

		httpapi.RegisterRoutes(app, httpapi.Deps{
			Weather:       a.Weather,
			Cache:         a.Cache,
			Preferences:   a.Prefs,
			History:       a.History,
			Flags:         a.KV,
			Credentials:   a,
			SessionSecret: []byte(cfg.SessionSecret),
			CacheTTL:      cfg.CacheTTL,
		})

		go func() {
			log.Printf("INFO: listening on :%s", cfg.Port)
			if err := app.Listen(":" + cfg.Port); err != nil {
				log.Printf("fiber server stopped: %v", err)
			}
		}()

		// Wait for termination signal
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
