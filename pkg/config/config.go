package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/quantfeed/blockwatch/internal/alert"
	"github.com/quantfeed/blockwatch/pkg/types"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	LogFile  string // empty disables file logging
	HTTPPort string

	// Alert feed
	FeedWSURL               string
	FeedChannel             string
	BlockTradeTag           string
	WSDialTimeout           time.Duration
	WSPongTimeout           time.Duration
	WSPingInterval          time.Duration
	WSReconnectInitialDelay time.Duration
	WSReconnectMaxDelay     time.Duration
	WSReconnectBackoffMult  float64
	WSMessageBufferSize     int

	// Alert rules
	RulesFile               string // optional YAML override
	BTCVolumeThreshold      float64
	ETHVolumeThreshold      float64
	ETHVolumeThresholdTest  float64
	PremiumThresholdUSD     float64
	VolumeAggregation       string // "sum" or "max-leg"
	ExchangeAllowList       []string
	AlertTestMode           bool

	// Notification
	NotifyMode           string // "console" or "smtp"
	NotifyRatePerMinute  float64
	NotifyDedupTTL       time.Duration
	SMTPHost             string
	SMTPPort             string
	SMTPUser             string
	SMTPPassword         string
	SMTPFrom             string
	SMTPRecipients       []string

	// Reference-price hints
	RefHintTTL time.Duration

	// Storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		FeedWSURL:               getEnvOrDefault("FEED_WS_URL", "wss://feed.blockwatch.local/ws/alerts"),
		FeedChannel:             getEnvOrDefault("FEED_CHANNEL", "block-trades"),
		BlockTradeTag:           getEnvOrDefault("BLOCK_TRADE_TAG", "#block"),
		WSDialTimeout:           getDurationOrDefault("WS_DIAL_TIMEOUT", 10*time.Second),
		WSPongTimeout:           getDurationOrDefault("WS_PONG_TIMEOUT", 15*time.Second),
		WSPingInterval:          getDurationOrDefault("WS_PING_INTERVAL", 10*time.Second),
		WSReconnectInitialDelay: getDurationOrDefault("WS_RECONNECT_INITIAL_DELAY", 1*time.Second),
		WSReconnectMaxDelay:     getDurationOrDefault("WS_RECONNECT_MAX_DELAY", 30*time.Second),
		WSReconnectBackoffMult:  getFloat64OrDefault("WS_RECONNECT_BACKOFF_MULTIPLIER", 2.0),
		WSMessageBufferSize:     getIntOrDefault("WS_MESSAGE_BUFFER_SIZE", 1000),

		RulesFile:              os.Getenv("RULES_FILE"),
		BTCVolumeThreshold:     getFloat64OrDefault("BTC_VOLUME_THRESHOLD", 200),
		ETHVolumeThreshold:     getFloat64OrDefault("ETH_VOLUME_THRESHOLD", 5000),
		ETHVolumeThresholdTest: getFloat64OrDefault("ETH_VOLUME_THRESHOLD_TEST", 1000),
		PremiumThresholdUSD:    getFloat64OrDefault("PREMIUM_USD_THRESHOLD", 1_000_000),
		VolumeAggregation:      getEnvOrDefault("VOLUME_AGGREGATION", "sum"),
		ExchangeAllowList:      getListOrDefault("MONITORED_EXCHANGES", []string{"Deribit"}),
		AlertTestMode:          getBoolOrDefault("ALERT_TEST_MODE", false),

		NotifyMode:          getEnvOrDefault("NOTIFY_MODE", "console"),
		NotifyRatePerMinute: getFloat64OrDefault("NOTIFY_RATE_PER_MINUTE", 10),
		NotifyDedupTTL:      getDurationOrDefault("NOTIFY_DEDUP_TTL", 24*time.Hour),
		SMTPHost:            os.Getenv("SMTP_HOST"),
		SMTPPort:            getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUser:            os.Getenv("SMTP_USER"),
		SMTPPassword:        os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:            os.Getenv("SMTP_FROM"),
		SMTPRecipients:      getListOrDefault("SMTP_RECIPIENTS", nil),

		RefHintTTL: getDurationOrDefault("REF_HINT_TTL", 6*time.Hour),

		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "blockwatch"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "blockwatch123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "blockwatch"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	if cfg.RulesFile != "" {
		err := cfg.applyRulesFile(cfg.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("apply rules file: %w", err)
		}
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// rulesFile is the YAML shape of an alert-rules override file.
type rulesFile struct {
	Thresholds struct {
		BTCVolume  float64 `yaml:"btc_volume"`
		ETHVolume  float64 `yaml:"eth_volume"`
		PremiumUSD float64 `yaml:"premium_usd"`
	} `yaml:"thresholds"`
	VolumeAggregation string   `yaml:"volume_aggregation"`
	Exchanges         []string `yaml:"exchanges"`
	TestMode          *bool    `yaml:"test_mode"`
}

// applyRulesFile overlays threshold/allow-list values from a YAML file on
// top of the env-derived defaults.
func (c *Config) applyRulesFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var rf rulesFile
	err = yaml.Unmarshal(b, &rf)
	if err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}

	if rf.Thresholds.BTCVolume > 0 {
		c.BTCVolumeThreshold = rf.Thresholds.BTCVolume
	}
	if rf.Thresholds.ETHVolume > 0 {
		c.ETHVolumeThreshold = rf.Thresholds.ETHVolume
	}
	if rf.Thresholds.PremiumUSD > 0 {
		c.PremiumThresholdUSD = rf.Thresholds.PremiumUSD
	}
	if rf.VolumeAggregation != "" {
		c.VolumeAggregation = rf.VolumeAggregation
	}
	if len(rf.Exchanges) > 0 {
		c.ExchangeAllowList = rf.Exchanges
	}
	if rf.TestMode != nil {
		c.AlertTestMode = *rf.TestMode
	}
	return nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}
	if c.FeedWSURL == "" {
		return fmt.Errorf("FEED_WS_URL cannot be empty")
	}
	if c.NotifyMode != "console" && c.NotifyMode != "smtp" {
		return fmt.Errorf("NOTIFY_MODE must be 'console' or 'smtp', got %q", c.NotifyMode)
	}
	if c.NotifyMode == "smtp" {
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST required when NOTIFY_MODE=smtp")
		}
		if len(c.SMTPRecipients) == 0 {
			return fmt.Errorf("SMTP_RECIPIENTS required when NOTIFY_MODE=smtp")
		}
	}
	if c.StorageMode != "postgres" && c.StorageMode != "console" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'console', got %q", c.StorageMode)
	}

	return c.RuleSet().Validate()
}

// RuleSet builds the immutable rule snapshot handed to every evaluation.
// Test mode substitutes the lowered ETH threshold, mirroring how the feed's
// staging environment is exercised without waiting for a 5000-lot trade.
func (c *Config) RuleSet() alert.RuleSet {
	ethThreshold := c.ETHVolumeThreshold
	if c.AlertTestMode {
		ethThreshold = c.ETHVolumeThresholdTest
	}

	return alert.RuleSet{
		VolumeThresholds: map[types.Asset]float64{
			types.AssetBTC: c.BTCVolumeThreshold,
			types.AssetETH: ethThreshold,
		},
		PremiumThresholdUSD: c.PremiumThresholdUSD,
		Aggregation:         alert.VolumeAggregation(c.VolumeAggregation),
		AllowedExchanges:    c.ExchangeAllowList,
		TestMode:            c.AlertTestMode,
	}
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

func getListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
