package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"energydash/internal/config"
	"energydash/internal/dashboard"
	"energydash/internal/engine"
	"energydash/internal/forcegraph"
	"energydash/internal/geo"
	"energydash/internal/logger"
)

var (
	configFile string

	// cfg holds the configuration of the running command.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "energydash",
	Short: "Global energy consumption dashboard",
	Long: `energydash aggregates global energy consumption and emissions records
into a linked map, chord diagram and bar chart.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		if f := cmd.Flags().Lookup("addr"); f != nil {
			if err := v.BindPFlag("server.address", f); err != nil {
				return err
			}
		}
		var err error
		cfg, err = config.LoadWith(v, configFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger.Init(cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "configuration file location")
	rootCmd.AddCommand(serveCmd, renderCmd)
}

// load builds the dashboard from the configured files.
func load(c *config.Config) (*dashboard.Dashboard, error) {
	t0 := time.Now()

	// 1. Records
	store, err := engine.LoadColumnar(c.Data.Records)
	if err != nil {
		return nil, err
	}

	// 2. Boundaries (optional)
	bounds := &geo.Boundaries{}
	if c.Data.Boundaries != "" {
		if bounds, err = geo.LoadBoundaries(c.Data.Boundaries); err != nil {
			return nil, err
		}
	}

	// 3. Force graph descriptor
	tmpl, err := forcegraph.LoadTemplate(c.Data.Graph)
	if err != nil {
		return nil, err
	}

	d := dashboard.New(store, bounds, tmpl, dashboard.Options{
		BarItems:           c.Bar.Items,
		BarDescending:      c.Bar.Descending,
		SignificantPercent: c.Chord.SignificantPercent,
		FrameDelay:         c.Animation.FrameDelay,
	})
	logger.Info("Loaded %d rows, %d boundaries and %d graph nodes in %v",
		store.Len(), len(bounds.Features), len(tmpl.Nodes), time.Since(t0))
	if unmapped := bounds.Unmapped(); len(unmapped) > 0 {
		logger.Debug("Boundaries without records: %v", unmapped)
	}
	return d, nil
}
