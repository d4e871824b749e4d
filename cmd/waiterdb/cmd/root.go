package cmd

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/go-waiter-catalog/internal/catalog"
	"github.com/tbourn/go-waiter-catalog/internal/config"
	"github.com/tbourn/go-waiter-catalog/internal/repo"
	"github.com/tbourn/go-waiter-catalog/internal/sysutil"
)

// version is stamped at build time with -ldflags "-X .../cmd.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "waiterdb",
	Short:         "waiterdb: restaurant reference catalog",
	Long:          "Search, facet and pair dishes, wines and bar items from the stored catalog or its JSON fallback.",
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(browseCmd)
}

// loadEnv reads .env outside production. A missing file is not an error.
func loadEnv() {
	if strings.EqualFold(os.Getenv("APP_ENV"), "production") {
		return
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg(".env not loaded")
	}
}

// setup loads the environment and configuration and installs the global
// logger.
func setup() (config.Config, error) {
	loadEnv()
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	sysutil.SetupLogging(cfg.LogLevel, cfg.LogPretty)
	return cfg, nil
}

// catalogOptions maps configuration onto engine options. A configured tag
// layout file replaces the bundled one.
func catalogOptions(cfg config.Config) (catalog.Options, error) {
	opts := catalog.DefaultOptions()
	opts.Locale = cfg.Catalog.LocaleTag()
	opts.MinQueryRunes = cfg.Catalog.MinQueryRunes
	opts.Threshold = cfg.Catalog.Threshold
	if cfg.Catalog.TagGroupsPath != "" {
		layout, err := catalog.LoadTagLayout(cfg.Catalog.TagGroupsPath)
		if err != nil {
			return catalog.Options{}, err
		}
		opts.Layout = layout
	}
	return opts, nil
}

// openDB connects to the configured store and migrates its schema.
func openDB(cfg config.Config) (*gorm.DB, error) {
	dsn := cfg.DB.Path
	if cfg.DB.Driver == config.DriverPostgres {
		dsn = cfg.DB.URL
	}
	db, err := repo.Open(cfg.DB.Driver, dsn, cfg.OTEL.Enabled)
	if err != nil {
		return nil, err
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// closeDB releases the underlying connection pool.
func closeDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
