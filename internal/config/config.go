package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string
	AllowOrigins  string
	TZDefault     string
	ReqTimeoutSec int

	DBDriver   string // postgres | sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	JWTSecret       string
	SessionTTLHours int

	UpcomingWindowDays  int
	ReminderLeadDays    int
	ReminderHour        int
	ReminderMinute      int
	ReminderCatchUp     bool // remind immediately when the lead window was already missed
	DispatchIntervalSec int
	ReminderWebhookURL  string

	LogLevel  string
	LogFormat string // json | console
}

var defaults = map[string]any{
	"port":                      "8080",
	"allow_origins":             "*",
	"tz_default":                "UTC",
	"request_timeout_seconds":   30,
	"db_driver":                 "postgres",
	"db_host":                   "localhost",
	"db_port":                   "5432",
	"db_user":                   "postgres",
	"db_password":               "",
	"db_name":                   "zero",
	"db_sslmode":                "disable",
	"sqlite_path":               "zero.db",
	"jwt_secret":                "",
	"session_ttl_hours":         24 * 30,
	"upcoming_window_days":      7,
	"reminder_lead_days":        7,
	"reminder_hour":             9,
	"reminder_minute":           0,
	"reminder_catch_up":         false,
	"dispatch_interval_seconds": 60,
	"reminder_webhook_url":      "",
	"log_level":                 "info",
	"log_format":                "json",
}

// Load reads ./configs/config.yaml when present and lets environment variables
// (PORT, DB_HOST, REMINDER_LEAD_DAYS, ...) override it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AutomaticEnv()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{
		Port:          v.GetString("port"),
		AllowOrigins:  v.GetString("allow_origins"),
		TZDefault:     v.GetString("tz_default"),
		ReqTimeoutSec: v.GetInt("request_timeout_seconds"),

		DBDriver:   strings.ToLower(v.GetString("db_driver")),
		DBHost:     v.GetString("db_host"),
		DBPort:     v.GetString("db_port"),
		DBUser:     v.GetString("db_user"),
		DBPassword: v.GetString("db_password"),
		DBName:     v.GetString("db_name"),
		DBSSLMode:  v.GetString("db_sslmode"),
		SQLitePath: v.GetString("sqlite_path"),

		JWTSecret:       v.GetString("jwt_secret"),
		SessionTTLHours: v.GetInt("session_ttl_hours"),

		UpcomingWindowDays:  v.GetInt("upcoming_window_days"),
		ReminderLeadDays:    v.GetInt("reminder_lead_days"),
		ReminderHour:        v.GetInt("reminder_hour"),
		ReminderMinute:      v.GetInt("reminder_minute"),
		ReminderCatchUp:     v.GetBool("reminder_catch_up"),
		DispatchIntervalSec: v.GetInt("dispatch_interval_seconds"),
		ReminderWebhookURL:  v.GetString("reminder_webhook_url"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.ReminderHour < 0 || c.ReminderHour > 23 {
		return fmt.Errorf("REMINDER_HOUR %d is out of range", c.ReminderHour)
	}
	if c.ReminderMinute < 0 || c.ReminderMinute > 59 {
		return fmt.Errorf("REMINDER_MINUTE %d is out of range", c.ReminderMinute)
	}
	if c.ReminderLeadDays < 0 {
		return fmt.Errorf("REMINDER_LEAD_DAYS must not be negative")
	}
	if c.UpcomingWindowDays < 0 {
		return fmt.Errorf("UPCOMING_WINDOW_DAYS must not be negative")
	}
	return nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.ReqTimeoutSec) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *Config) DispatchInterval() time.Duration {
	if c.DispatchIntervalSec <= 0 {
		return time.Minute
	}
	return time.Duration(c.DispatchIntervalSec) * time.Second
}

// Location resolves TZ_DEFAULT, falling back to UTC.
func (c *Config) Location() *time.Location {
	return LoadLocation(c.TZDefault)
}

func LoadLocation(name string) *time.Location {
	if strings.TrimSpace(name) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
