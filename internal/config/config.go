package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/octobees/leads-generator/sitescan/internal/scanner"
)

const (
	TransportStandard = "standard"
	TransportChrome   = "chrome"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// ScanConfig tunes the crawler.
type ScanConfig struct {
	PageTimeout time.Duration
	PageDelay   time.Duration
	Deadline    time.Duration
	UserAgent   string
	Transport   string
	PhoneRegion string
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string
	Format string
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	TokenTTL      time.Duration
	RateLimitScan RateLimitConfig
	WebhookURL    string
	Scan          ScanConfig
	Log           LogConfig
}

// Load reads configuration from the environment and an optional sitescan.yaml in the
// working directory. Environment values win over the file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("sitescan")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("JWT_SECRET", "dev-secret")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("RATE_LIMIT_SCAN", "5/min")
	v.SetDefault("SCAN_PAGE_TIMEOUT", scanner.DefaultPageTimeout.String())
	v.SetDefault("SCAN_PAGE_DELAY", scanner.DefaultPageDelay.String())
	v.SetDefault("SCAN_DEADLINE", "5m")
	v.SetDefault("SCAN_USER_AGENT", scanner.DefaultUserAgent)
	v.SetDefault("SCAN_TRANSPORT", TransportStandard)
	v.SetDefault("PHONE_DEFAULT_REGION", "US")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	cfg := &Config{
		Port:        v.GetString("PORT"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		WebhookURL:  strings.TrimSpace(v.GetString("RESULT_WEBHOOK_URL")),
		Scan: ScanConfig{
			UserAgent:   v.GetString("SCAN_USER_AGENT"),
			Transport:   strings.ToLower(strings.TrimSpace(v.GetString("SCAN_TRANSPORT"))),
			PhoneRegion: strings.ToUpper(strings.TrimSpace(v.GetString("PHONE_DEFAULT_REGION"))),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"JWT_TTL", &cfg.TokenTTL},
		{"SCAN_PAGE_TIMEOUT", &cfg.Scan.PageTimeout},
		{"SCAN_PAGE_DELAY", &cfg.Scan.PageDelay},
		{"SCAN_DEADLINE", &cfg.Scan.Deadline},
	}
	for _, d := range durations {
		parsed, err := parseDuration(v.GetString(d.key))
		if err != nil {
			return nil, eris.Wrapf(err, "invalid %s value", d.key)
		}
		*d.target = parsed
	}

	rl, err := parseRateLimit(v.GetString("RATE_LIMIT_SCAN"))
	if err != nil {
		return nil, eris.Wrap(err, "invalid RATE_LIMIT_SCAN value")
	}
	cfg.RateLimitScan = rl

	switch cfg.Scan.Transport {
	case TransportStandard, TransportChrome:
	default:
		return nil, eris.Errorf("invalid SCAN_TRANSPORT value %q", cfg.Scan.Transport)
	}

	return cfg, nil
}

// HistoryEnabled reports whether a database is configured.
func (c *Config) HistoryEnabled() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

// NewLogger builds a zap logger. Format "console" selects the development encoder.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	return logger, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func parseDuration(input string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(input))
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", input)
	}
	return d, nil
}
