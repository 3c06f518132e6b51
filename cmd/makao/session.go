package main

import (
	"context"
	"fmt"
	"time"

	"github.com/makaohq/makao/internal/models"
	"github.com/makaohq/makao/internal/session"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and manage conversational sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := openDB()
		if err != nil {
			return err
		}
		var records []models.SessionRecord
		if err := gdb.Order("updated_at DESC").Find(&records).Error; err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("no sessions")
			return nil
		}
		now := time.Now().UTC()
		for _, r := range records {
			liveness := "live"
			if now.After(r.ExpiresAt) {
				liveness = "expired"
			}
			fmt.Printf("%-15s %-26s %-7s expires %s\n",
				r.Address, r.State, liveness, r.ExpiresAt.Format(time.RFC3339))
		}
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear <address>",
	Short: "Delete the session for an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := openDB()
		if err != nil {
			return err
		}
		store, err := session.NewGormStore(gdb)
		if err != nil {
			return err
		}
		if err := store.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("session for %s cleared\n", args[0])
		return nil
	},
}

var sessionSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove expired session rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := openDB()
		if err != nil {
			return err
		}
		store, err := session.NewGormStore(gdb)
		if err != nil {
			return err
		}
		n, err := store.SweepExpired(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("swept %d expired sessions\n", n)
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionClearCmd)
	sessionCmd.AddCommand(sessionSweepCmd)
}
