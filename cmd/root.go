package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "choropleth",
	Short: "Render a county choropleth of educational attainment",
	Long: `Fetches a per-county statistic table and a county topology, joins them on FIPS code,
and draws an 8-colour threshold map with a state overlay, hover tooltips and a legend.

Sources default to the freeCodeCamp education dataset and counties TopoJSON; point
--stats-url and --geometry-url at CSV, XLSX, shapefile or FTP sources to map other data.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := applyFlags(cmd.Flags(), c); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// addRootFlags registers the source and style overrides shared by every subcommand.
func addRootFlags(fs *pflag.FlagSet) {
	fs.String("stats-url", "", "statistic source (http, ftp, file or path; .json, .csv, .xlsx)")
	fs.String("geometry-url", "", "region geometry source (TopoJSON, shapefile .zip or .shp)")
	fs.StringSlice("palette", nil, "comma-separated colours, lowest bucket first")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
}

// applyFlags overrides config values with flags the user set explicitly.
func applyFlags(fs *pflag.FlagSet, c *config.Config) error {
	var err error
	if fs.Changed("stats-url") {
		if c.Data.StatsURL, err = fs.GetString("stats-url"); err != nil {
			return fmt.Errorf("stats-url flag: %w", err)
		}
	}
	if fs.Changed("geometry-url") {
		if c.Data.GeometryURL, err = fs.GetString("geometry-url"); err != nil {
			return fmt.Errorf("geometry-url flag: %w", err)
		}
	}
	if fs.Changed("palette") {
		if c.Map.Palette, err = fs.GetStringSlice("palette"); err != nil {
			return fmt.Errorf("palette flag: %w", err)
		}
	}
	if fs.Changed("log-level") {
		if c.Log.Level, err = fs.GetString("log-level"); err != nil {
			return fmt.Errorf("log-level flag: %w", err)
		}
	}
	return nil
}

func init() {
	addRootFlags(rootCmd.PersistentFlags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
