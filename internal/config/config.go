package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the runtime settings read from the environment (.env is
// loaded by godotenv/autoload in main).
type Config struct {
	Port          int
	DBURL         string
	LogLevel      string
	LogFormat     string
	HealthAPI     HealthAPIConfig
	Line          LineConfig
	Notifications NotificationsConfig
}

type HealthAPIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type LineConfig struct {
	ChannelSecret string
	ChannelToken  string
	RecipientID   string
}

// Enabled reports whether LINE credentials are present.
func (c LineConfig) Enabled() bool {
	return c.ChannelSecret != "" && c.ChannelToken != ""
}

type NotificationsConfig struct {
	Platform         string // android or ios
	Permission       string // granted or denied, simulates the user's answer to the prompt
	SnoozeEnabled    bool
	UsageLogAttempts int
	UsageLogBackoff  time.Duration
	SnoozeDelay      time.Duration
	DismissOnStartup bool
	ResponseTimeout  time.Duration
}

func defaults() Config {
	return Config{
		Port:      8080,
		DBURL:     "medreminder.db",
		LogLevel:  "info",
		LogFormat: "text",
		HealthAPI: HealthAPIConfig{
			BaseURL: "http://localhost:8888/api/v1",
			Timeout: 15 * time.Second,
		},
		Notifications: NotificationsConfig{
			Platform:         "android",
			Permission:       "granted",
			SnoozeEnabled:    true,
			UsageLogAttempts: 3,
			UsageLogBackoff:  500 * time.Millisecond,
			SnoozeDelay:      5 * time.Minute,
			DismissOnStartup: true,
			ResponseTimeout:  time.Minute,
		},
	}
}

// Load builds a Config from defaults overridden by environment variables.
func Load() (Config, error) {
	return loadWith(os.LookupEnv)
}

func loadWith(lookup func(string) (string, bool)) (Config, error) {
	cfg := defaults()
	var errs []string

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", key, err))
				return
			}
			*dst = d
		}
	}

	integer("PORT", &cfg.Port)
	str("BLUEPRINT_DB_URL", &cfg.DBURL)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)

	str("HEALTH_API_URL", &cfg.HealthAPI.BaseURL)
	str("HEALTH_API_TOKEN", &cfg.HealthAPI.Token)
	duration("HEALTH_API_TIMEOUT", &cfg.HealthAPI.Timeout)

	str("CHANNEL_SECRET", &cfg.Line.ChannelSecret)
	str("CHANNEL_ACCESS_TOKEN", &cfg.Line.ChannelToken)
	str("LINE_RECIPIENT_ID", &cfg.Line.RecipientID)

	str("NOTIFICATIONS_PLATFORM", &cfg.Notifications.Platform)
	str("NOTIFICATIONS_PERMISSION", &cfg.Notifications.Permission)
	boolean("NOTIFICATIONS_SNOOZE", &cfg.Notifications.SnoozeEnabled)
	integer("USAGE_LOG_MAX_ATTEMPTS", &cfg.Notifications.UsageLogAttempts)
	duration("USAGE_LOG_BACKOFF", &cfg.Notifications.UsageLogBackoff)
	duration("SNOOZE_DELAY", &cfg.Notifications.SnoozeDelay)
	boolean("NOTIFICATIONS_DISMISS_ON_STARTUP", &cfg.Notifications.DismissOnStartup)
	duration("RESPONSE_TIMEOUT", &cfg.Notifications.ResponseTimeout)

	cfg.Notifications.Platform = strings.ToLower(cfg.Notifications.Platform)
	cfg.Notifications.Permission = strings.ToLower(cfg.Notifications.Permission)

	if cfg.Port <= 0 || cfg.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT: out of range: %d", cfg.Port))
	}
	switch cfg.Notifications.Platform {
	case "android", "ios":
	default:
		errs = append(errs, fmt.Sprintf("NOTIFICATIONS_PLATFORM: unsupported platform %q", cfg.Notifications.Platform))
	}
	switch cfg.Notifications.Permission {
	case "granted", "denied":
	default:
		errs = append(errs, fmt.Sprintf("NOTIFICATIONS_PERMISSION: must be granted or denied, got %q", cfg.Notifications.Permission))
	}
	if cfg.Notifications.UsageLogAttempts < 1 {
		errs = append(errs, "USAGE_LOG_MAX_ATTEMPTS: must be at least 1")
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}
