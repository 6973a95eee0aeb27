package main

import (
	"fmt"

	"github.com/fortuna/nbastats/internal/config"
	"github.com/fortuna/nbastats/internal/store"
	"github.com/spf13/cobra"
)

var createdbCmd = &cobra.Command{
	Use:   "createdb",
	Short: "Create the database if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		created, err := store.CreateDatabase(cmd.Context(), cfg.AdminDSN, cfg.DatabaseName)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created database %s\n", cfg.DatabaseName)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Database %s already exists\n", cfg.DatabaseName)
		}
		return nil
	},
}

var dropdbCmd = &cobra.Command{
	Use:   "dropdb",
	Short: "Drop the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := store.DropDatabase(cmd.Context(), cfg.AdminDSN, cfg.DatabaseName); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dropped database %s\n", cfg.DatabaseName)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations and seed the league hierarchy",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()
		return migrate(db)
	},
}

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Drop every table, then migrate and seed again",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DropTables(cmd.Context()); err != nil {
			return err
		}
		if err := migrate(db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Database flushed")
		return nil
	},
}

func migrate(db *store.Database) error {
	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if err := db.SeedData(); err != nil {
		return fmt.Errorf("seed data: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(createdbCmd, dropdbCmd, migrateCmd, flushCmd)
}
