package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ug-admin-search/internal/config"
	"github.com/ug-admin-search/internal/logger"
)

var (
	configFile string
	dataDir    string
	dataSource string
	verbose    bool

	// cfg is resolved once in PersistentPreRunE and shared by all subcommands.
	cfg *config.Config
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "adminsearch",
		Short:         "Fuzzy search over administrative units",
		Long:          `Resolves free-text place queries such as "Mbuya in Nakawa, Kampala" against the district, county, sub-county, parish and village hierarchy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (.yaml, .yml or .json)")
	flags.StringVar(&dataDir, "data", "", "directory of level files; implies --source dir")
	flags.StringVar(&dataSource, "source", "", "reference data source: embedded, dir or postgres")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(createServeCmd())
	rootCmd.AddCommand(createSearchCmd())
	rootCmd.AddCommand(createExactCmd())
	rootCmd.AddCommand(createChainCmd())
	rootCmd.AddCommand(createStatsCmd())
	rootCmd.AddCommand(createDBCmd())

	return rootCmd
}

func loadConfig() error {
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	c, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if dataDir != "" {
		c.Data.Source = config.SourceDir
		c.Data.Dir = dataDir
	}
	if dataSource != "" {
		c.Data.Source = dataSource
	}
	if err := c.Validate(); err != nil {
		return err
	}

	level := c.Log.Level
	if verbose {
		level = "debug"
	}
	logger.SetupWriter(os.Stderr, level, c.Log.Format)
	cfg = c
	return nil
}
