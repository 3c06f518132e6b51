package config

import (
	"strings"
	"testing"
)

const minimalYAML = `
channel:
  phone_number_id: "106540123456789"
  access_token: "EAAG-token"
  verify_token: "hub-verify"
`

func TestParse_Minimal(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenPort != 8080 {
		t.Errorf("ListenPort = %d, want 8080", cfg.ListenPort)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Database.Path != "makao.db" {
		t.Errorf("Database.Path = %q, want makao.db", cfg.Database.Path)
	}
	if cfg.Session.TTLMinutes != 30 {
		t.Errorf("Session.TTLMinutes = %d, want 30", cfg.Session.TTLMinutes)
	}
	if cfg.Session.HistoryLimit != 20 {
		t.Errorf("Session.HistoryLimit = %d, want 20", cfg.Session.HistoryLimit)
	}
	if cfg.Channel.TimeoutSec != 15 {
		t.Errorf("Channel.TimeoutSec = %d, want 15", cfg.Channel.TimeoutSec)
	}
}

func TestParse_MissingRequired(t *testing.T) {
	_, err := Parse([]byte("listen_port: 9000\n"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"phone_number_id", "access_token", "verify_token"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
}

func TestParse_BadDriver(t *testing.T) {
	yaml := minimalYAML + "database:\n  driver: postgres\n"
	_, err := Parse([]byte(yaml))
	if err == nil || !strings.Contains(err.Error(), "driver") {
		t.Fatalf("expected driver validation error, got %v", err)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("::: not yaml"))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParse_MySQLDefaults(t *testing.T) {
	yaml := minimalYAML + "database:\n  driver: mysql\n"
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "127.0.0.1" || cfg.Database.Port != 3306 {
		t.Errorf("mysql defaults = %s:%d, want 127.0.0.1:3306", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Database.User != "root" || cfg.Database.Name != "makao" {
		t.Errorf("mysql defaults user=%q name=%q", cfg.Database.User, cfg.Database.Name)
	}
}
