package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port: want 8080 got %s", cfg.Port)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("driver: want postgres got %s", cfg.DBDriver)
	}
	if cfg.ReminderLeadDays != 7 || cfg.ReminderHour != 9 || cfg.ReminderMinute != 0 {
		t.Errorf("unexpected reminder defaults: %+v", cfg)
	}
	if cfg.ReminderCatchUp {
		t.Errorf("catch-up reminders must be off by default")
	}
	if cfg.UpcomingWindowDays != 7 {
		t.Errorf("upcoming window: want 7 got %d", cfg.UpcomingWindowDays)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("request timeout: want 30s got %s", cfg.RequestTimeout())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("REMINDER_LEAD_DAYS", "3")
	t.Setenv("REMINDER_CATCH_UP", "true")
	t.Setenv("TZ_DEFAULT", "America/Mexico_City")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port: want 9090 got %s", cfg.Port)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("driver: want sqlite got %s", cfg.DBDriver)
	}
	if cfg.ReminderLeadDays != 3 {
		t.Errorf("lead days: want 3 got %d", cfg.ReminderLeadDays)
	}
	if !cfg.ReminderCatchUp {
		t.Errorf("expected catch-up enabled")
	}
	if cfg.Location().String() != "America/Mexico_City" {
		t.Errorf("location: want America/Mexico_City got %s", cfg.Location())
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret": {"JWT_SECRET": ""},
		"bad driver":     {"JWT_SECRET": "s", "DB_DRIVER": "mysql"},
		"bad hour":       {"JWT_SECRET": "s", "REMINDER_HOUR": "24"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadLocation_FallsBackToUTC(t *testing.T) {
	if got := LoadLocation("Not/AZone"); got != time.UTC {
		t.Fatalf("expected UTC, got %s", got)
	}
	if got := LoadLocation(""); got != time.UTC {
		t.Fatalf("expected UTC, got %s", got)
	}
}
