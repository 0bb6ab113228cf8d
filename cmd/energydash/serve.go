package main

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"energydash/internal/api"
	"energydash/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Initialize Echo (starts instantly)
		e := echo.New()
		e.HideBanner = true
		e.Use(middleware.CORS())
		e.Use(middleware.Recover())
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{Output: logger.Logrus().Writer()}))

		// 2. Handler with nil data answers 503 until loading finishes
		h := api.NewHandler(nil)
		h.RegisterRoutes(e)

		// 3. Load in the background
		go func() {
			logger.Info("Loading data in background...")
			d, err := load(cfg)
			if err != nil {
				logger.Fatal("Loading data: %v", err)
			}
			h.SetData(d)
			logger.Info("Dashboard ready")
		}()

		// 4. Start server
		logger.Info("Server ready on %s (data loading in background...)", cfg.Server.Address)
		return e.Start(cfg.Server.Address)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
}
