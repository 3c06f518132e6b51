package main

import (
	"fmt"
	"os"

	"github.com/makaohq/makao/internal/config"
	"github.com/makaohq/makao/internal/db"
	"github.com/makaohq/makao/internal/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database administration",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := openDB()
		if err != nil {
			return err
		}
		if err := db.AutoMigrate(gdb); err != nil {
			return err
		}
		fmt.Println("schema up to date")
		return nil
	},
}

var dbSeedCmd = &cobra.Command{
	Use:   "seed <contacts.yaml>",
	Short: "Upsert emergency contacts from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		var contacts []models.EmergencyContact
		if err := yaml.Unmarshal(data, &contacts); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		gdb, err := openDB()
		if err != nil {
			return err
		}
		if err := db.AutoMigrate(gdb); err != nil {
			return err
		}
		if err := db.SeedContacts(gdb, contacts); err != nil {
			return err
		}
		fmt.Printf("seeded %d emergency contacts\n", len(contacts))
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbSeedCmd)
}

func openDB() (*gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return db.Connect(cfg.Database)
}
