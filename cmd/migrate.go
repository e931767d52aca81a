/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/catalogo-api/apiserver/internal/db"
	"github.com/spf13/cobra"
)

var migrationsPath string

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrations(true)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrations(false)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "path", db.DefaultMigrationsPath, "directory holding the migration files")
}

func runMigrations(up bool) error {
	cfg, logger, err := loadEnvironment()
	if err != nil {
		return err
	}

	direction := "down"
	if up {
		direction = "up"
	}
	log := logger.WithField("direction", direction).WithField("path", migrationsPath)

	if err := db.Migrate(migrationsPath, cfg.Database.DSN(), up); err != nil {
		log.WithError(err).Error("migration failed")
		return err
	}
	log.Info("migrations applied")
	return nil
}
