package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"DatabaseName", cfg.DatabaseName, "nbastats"},
		{"RedisURL", cfg.RedisURL, "redis://localhost:6379"},
		{"RESTPort", cfg.RESTPort, "8080"},
		{"WSPort", cfg.WSPort, "8081"},
		{"StatsAPIBase", cfg.StatsAPIBase, "https://stats.nba.com/stats"},
		{"CurrentSeason", cfg.CurrentSeason, ""},
		{"DailyIngestionHour", cfg.Scheduler.DailyIngestionHour, 3},
		{"EnableDailyIngestion", cfg.Scheduler.EnableDailyIngestion, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("NBASTATS_REST_PORT", "9090")
	t.Setenv("NBASTATS_CURRENT_SEASON", "2014-15")
	t.Setenv("NBASTATS_SCHEDULER_DAILY_INGESTION_HOUR", "5")

	if err := Init(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Init with an explicit missing file should fail")
	}

	viper.Reset()
	if err := Init(""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RESTPort != "9090" {
		t.Errorf("RESTPort = %q, want 9090", cfg.RESTPort)
	}
	if cfg.CurrentSeason != "2014-15" {
		t.Errorf("CurrentSeason = %q, want 2014-15", cfg.CurrentSeason)
	}
	if cfg.Scheduler.DailyIngestionHour != 5 {
		t.Errorf("DailyIngestionHour = %d, want 5", cfg.Scheduler.DailyIngestionHour)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	viper.Reset()

	path := filepath.Join(t.TempDir(), "nbastats.yaml")
	content := "redis_url: redis://cache:6379/2\nscheduler:\n  enable_standings: false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := Init(path); err != nil {
		t.Fatalf("Init: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RedisURL != "redis://cache:6379/2" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.Scheduler.EnableStandings {
		t.Error("EnableStandings should be false from file")
	}
}

func TestLoad_RejectsBadHour(t *testing.T) {
	viper.Reset()
	viper.Set("scheduler.daily_ingestion_hour", 25)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for hour 25")
	}
}
