package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/makaohq/makao/internal/catalog"
	"github.com/makaohq/makao/internal/channel"
	"github.com/makaohq/makao/internal/config"
	"github.com/makaohq/makao/internal/db"
	"github.com/makaohq/makao/internal/directory"
	"github.com/makaohq/makao/internal/emergency"
	"github.com/makaohq/makao/internal/session"
	"github.com/spf13/cobra"
)

var (
	incidentStatus string
	resolveNotes   string
)

var incidentCmd = &cobra.Command{
	Use:   "incident",
	Short: "Inspect and manage emergency incidents",
}

var incidentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List incidents",
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := openDB()
		if err != nil {
			return err
		}
		store, err := emergency.NewIncidentStore(gdb)
		if err != nil {
			return err
		}
		incidents, err := store.List(context.Background(), incidentStatus)
		if err != nil {
			return err
		}
		if len(incidents) == 0 {
			fmt.Println("no incidents")
			return nil
		}
		for _, inc := range incidents {
			fmt.Printf("%s  %-10s %-10s %-8s %s  %s\n",
				inc.ID, inc.Type, inc.Status, inc.Confidence,
				inc.CreatedAt.Format(time.RFC3339), inc.ReporterPhone)
		}
		return nil
	},
}

var incidentShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an incident with its timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := openDB()
		if err != nil {
			return err
		}
		store, err := emergency.NewIncidentStore(gdb)
		if err != nil {
			return err
		}
		inc, err := store.Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("incident %s\n", inc.ID)
		fmt.Printf("  type       %s (%s confidence)\n", inc.Type, inc.Confidence)
		fmt.Printf("  status     %s\n", inc.Status)
		fmt.Printf("  reporter   %s\n", inc.ReporterPhone)
		if inc.PropertyID != "" {
			fmt.Printf("  property   %s unit %s\n", inc.PropertyID, inc.UnitLabel)
		}
		fmt.Printf("  opened     %s\n", inc.CreatedAt.Format(time.RFC3339))
		if inc.ResolvedAt != nil {
			fmt.Printf("  resolved   %s (%s)\n", inc.ResolvedAt.Format(time.RFC3339), inc.ResolutionNotes)
		}
		if len(inc.Events) > 0 {
			fmt.Println("  timeline:")
			for _, ev := range inc.Events {
				fmt.Printf("    %2d. [%s] %-8s %s %s\n", ev.Sequence,
					ev.OccurredAt.Format("15:04:05"), ev.Actor, ev.Label, ev.Detail)
			}
		}
		if len(inc.Notifications) > 0 {
			fmt.Println("  notifications:")
			for _, n := range inc.Notifications {
				status := "delivered"
				if !n.Delivered {
					status = "failed: " + n.Error
				}
				fmt.Printf("    %s (%s, %s) %s\n", n.ContactName, n.Role, n.Phone, status)
			}
		}
		return nil
	},
}

var incidentResolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Resolve an incident and notify the reporter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine()
		if err != nil {
			return err
		}
		inc, err := engine.Resolve(context.Background(), args[0], resolveNotes)
		if err != nil {
			return err
		}
		fmt.Printf("incident %s resolved\n", inc.ID)
		return nil
	},
}

var incidentRespondCmd = &cobra.Command{
	Use:   "respond <id>",
	Short: "Mark an incident as being responded to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine()
		if err != nil {
			return err
		}
		inc, err := engine.MarkResponding(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("incident %s is now %s\n", inc.ID, inc.Status)
		return nil
	},
}

func init() {
	incidentListCmd.Flags().StringVar(&incidentStatus, "status", "", "filter by status (active, responding, resolved)")
	incidentResolveCmd.Flags().StringVarP(&resolveNotes, "notes", "m", "", "resolution notes")
	incidentCmd.AddCommand(incidentListCmd)
	incidentCmd.AddCommand(incidentShowCmd)
	incidentCmd.AddCommand(incidentResolveCmd)
	incidentCmd.AddCommand(incidentRespondCmd)
}

// buildEngine assembles an emergency engine against the live database and
// channel, so operator actions from the CLI notify tenants the same way the
// server does.
func buildEngine() (*emergency.Engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	gdb, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	client, err := channel.NewClient(channel.ClientOpts{
		BaseURL:       cfg.Channel.BaseURL,
		PhoneNumberID: cfg.Channel.PhoneNumberID,
		AccessToken:   cfg.Channel.AccessToken,
		HTTPClient:    &http.Client{Timeout: time.Duration(cfg.Channel.TimeoutSec) * time.Second},
	})
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewGormStore(gdb)
	if err != nil {
		return nil, err
	}
	dir, err := directory.NewGormDirectory(gdb)
	if err != nil {
		return nil, err
	}
	incidents, err := emergency.NewIncidentStore(gdb)
	if err != nil {
		return nil, err
	}
	return emergency.NewEngine(emergency.EngineOpts{
		Sender:    client,
		Incidents: incidents,
		Contacts:  dir,
		Sessions:  sessions,
		Catalog:   catalog.Default(),
	})
}
