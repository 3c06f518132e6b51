// Package config provides YAML-based configuration loading for Makao.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Makao configuration, loaded from config.yaml.
type Config struct {
	ListenPort int            `yaml:"listen_port"`
	Database   DatabaseConfig `yaml:"database"`
	Channel    ChannelConfig  `yaml:"channel"`
	Session    SessionConfig  `yaml:"session"`
	Alerts     AlertsConfig   `yaml:"alerts"`
}

// DatabaseConfig selects and parameterizes the storage backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "mysql" or "sqlite"
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Name   string `yaml:"name"`
	User   string `yaml:"user"`
	Pass   string `yaml:"pass"`
	Path   string `yaml:"path"` // sqlite file path
}

// ChannelConfig holds credentials for the outbound messaging API and the
// inbound webhook handshake.
type ChannelConfig struct {
	BaseURL       string `yaml:"base_url"`
	PhoneNumberID string `yaml:"phone_number_id"`
	AccessToken   string `yaml:"access_token"`
	VerifyToken   string `yaml:"verify_token"`
	AppSecret     string `yaml:"app_secret"` // empty disables signature verification (fail-open, logged)
	TimeoutSec    int    `yaml:"timeout_sec"`
}

// SessionConfig tunes conversational session lifecycle.
type SessionConfig struct {
	TTLMinutes   int    `yaml:"ttl_minutes"`
	HistoryLimit int    `yaml:"history_limit"`
	SweepCron    string `yaml:"sweep_cron"` // empty disables the hygiene sweep
}

// AlertsConfig configures the optional ops alert mirror. At most one platform
// is used; Slack wins when both are set.
type AlertsConfig struct {
	Slack   SlackAlertConfig   `yaml:"slack"`
	Discord DiscordAlertConfig `yaml:"discord"`
}

// SlackAlertConfig holds Slack credentials for mirrored emergency alerts.
type SlackAlertConfig struct {
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
}

// DiscordAlertConfig holds Discord credentials for mirrored emergency alerts.
type DiscordAlertConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.ListenPort == 0 {
		c.ListenPort = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "makao.db"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Name == "" {
		c.Database.Name = "makao"
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Channel.BaseURL == "" {
		c.Channel.BaseURL = "https://graph.facebook.com/v18.0"
	}
	if c.Channel.TimeoutSec == 0 {
		c.Channel.TimeoutSec = 15
	}
	if c.Session.TTLMinutes == 0 {
		c.Session.TTLMinutes = 30
	}
	if c.Session.HistoryLimit == 0 {
		c.Session.HistoryLimit = 20
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (mysql, sqlite)", c.Database.Driver))
	}
	if c.Channel.PhoneNumberID == "" {
		errs = append(errs, "channel.phone_number_id is required")
	}
	if c.Channel.AccessToken == "" {
		errs = append(errs, "channel.access_token is required")
	}
	if c.Channel.VerifyToken == "" {
		errs = append(errs, "channel.verify_token is required")
	}
	if c.Session.TTLMinutes < 0 {
		errs = append(errs, "session.ttl_minutes must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
