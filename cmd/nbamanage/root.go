package main

import (
	"fmt"
	"log"
	"os"

	"github.com/fortuna/nbastats/internal/config"
	"github.com/fortuna/nbastats/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "nbamanage",
	Short:         "Manage the nbastats database",
	Long:          "nbamanage creates, migrates and loads the nbastats Postgres database and runs one-off ingestion.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .nbastats.yaml)")
	rootCmd.PersistentFlags().String("dsn", "", "Postgres DSN (overrides database_dsn)")
	_ = viper.BindPFlag("database_dsn", rootCmd.PersistentFlags().Lookup("dsn"))
}

func initConfig() {
	cfgFile, _ := rootCmd.Flags().GetString("config")
	if err := config.Init(cfgFile); err != nil {
		log.Printf("⚠️  %v", err)
	}
}

// openDatabase loads configuration and connects to the service database
func openDatabase() (*store.Database, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, err
	}
	db, err := store.NewDatabase(cfg.DatabaseDSN)
	if err != nil {
		return nil, cfg, fmt.Errorf("connect database: %w", err)
	}
	return db, cfg, nil
}
