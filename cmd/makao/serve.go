package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/makaohq/makao/internal/alert"
	"github.com/makaohq/makao/internal/alert/discord"
	"github.com/makaohq/makao/internal/alert/slack"
	"github.com/makaohq/makao/internal/catalog"
	"github.com/makaohq/makao/internal/channel"
	"github.com/makaohq/makao/internal/config"
	"github.com/makaohq/makao/internal/db"
	"github.com/makaohq/makao/internal/directory"
	"github.com/makaohq/makao/internal/emergency"
	"github.com/makaohq/makao/internal/router"
	"github.com/makaohq/makao/internal/server"
	"github.com/makaohq/makao/internal/session"
	"github.com/makaohq/makao/internal/workflow"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the session engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return serve(cfg)
	},
}

func serve(cfg *config.Config) error {
	gdb, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gdb); err != nil {
		return err
	}

	client, err := channel.NewClient(channel.ClientOpts{
		BaseURL:       cfg.Channel.BaseURL,
		PhoneNumberID: cfg.Channel.PhoneNumberID,
		AccessToken:   cfg.Channel.AccessToken,
		HTTPClient:    &http.Client{Timeout: time.Duration(cfg.Channel.TimeoutSec) * time.Second},
	})
	if err != nil {
		return err
	}

	sessions, err := session.NewGormStore(gdb)
	if err != nil {
		return err
	}
	dir, err := directory.NewGormDirectory(gdb)
	if err != nil {
		return err
	}
	incidents, err := emergency.NewIncidentStore(gdb)
	if err != nil {
		return err
	}
	recorder, err := workflow.NewGormRecorder(gdb)
	if err != nil {
		return err
	}
	cat := catalog.Default()

	mirror, err := buildAlertMirror(cfg.Alerts)
	if err != nil {
		return err
	}

	engine, err := emergency.NewEngine(emergency.EngineOpts{
		Sender:    client,
		Incidents: incidents,
		Contacts:  dir,
		Sessions:  sessions,
		Catalog:   cat,
		Alerts:    mirror,
	})
	if err != nil {
		return err
	}

	rt, err := router.New(router.RouterOpts{
		Sender:       client,
		Store:        sessions,
		Tenants:      dir,
		Engine:       engine,
		Env:          &workflow.Env{Catalog: cat, Tenants: dir, Recorder: recorder},
		TTL:          time.Duration(cfg.Session.TTLMinutes) * time.Minute,
		HistoryLimit: cfg.Session.HistoryLimit,
	})
	if err != nil {
		return err
	}

	srv, err := server.New(server.Opts{
		Router:      rt,
		Engine:      engine,
		Incidents:   incidents,
		Sessions:    sessions,
		VerifyToken: cfg.Channel.VerifyToken,
		AppSecret:   cfg.Channel.AppSecret,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Session.SweepCron != "" {
		stopSweep, err := session.StartSweeper(ctx, sessions, cfg.Session.SweepCron)
		if err != nil {
			return err
		}
		defer stopSweep()
	}

	log.Printf("makao: starting, version %s", Version)
	return srv.Start(ctx, server.StartOpts{Port: cfg.ListenPort})
}

// buildAlertMirror assembles the optional ops alert adapter from config.
// Slack wins when both platforms are configured.
func buildAlertMirror(cfg config.AlertsConfig) (alert.Adapter, error) {
	switch {
	case cfg.Slack.Token != "" && cfg.Slack.Channel != "":
		a, err := slack.New(slack.Opts{Token: cfg.Slack.Token, Channel: cfg.Slack.Channel})
		if err != nil {
			return nil, fmt.Errorf("alerts: %w", err)
		}
		return a, nil
	case cfg.Discord.BotToken != "" && cfg.Discord.ChannelID != "":
		a, err := discord.New(discord.Opts{BotToken: cfg.Discord.BotToken, ChannelID: cfg.Discord.ChannelID})
		if err != nil {
			return nil, fmt.Errorf("alerts: %w", err)
		}
		return a, nil
	}
	return nil, nil
}
