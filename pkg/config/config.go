package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// External endpoints
	FeedBaseURL       string
	GatewayBaseURL    string
	GatewayWSURL      string
	IndexerURL        string
	GeocodeURL        string
	ForecastURL       string
	TelegramToken     string
	TelegramChatID    string
	IndexerAPIKey     string
	GatewayAPIKey     string
	GatewaySecret     string
	GatewayPassphrase string

	// Scan loop
	ScanInterval     time.Duration
	CommandInterval  time.Duration
	FeedPageLimit    int
	FeedRatePerSec   float64
	MaxOtherPerCycle int // non-priority markets evaluated per cycle

	// Market filter
	MinHoursToExpiry float64
	MinVolume        float64
	MinLiquidity     float64
	NoArbBand        float64 // crypto-binary: |sum-1| within band means no edge

	// Pricing
	MinEdge          float64
	MinConfidence    float64
	TakerFee         float64 // widens the effective no-arb band
	NarrowBandWidth  float64 // weather: threshold bands narrower than this lose confidence
	MinSideLiquidity float64 // price-weighted liquidity floor for the traded side
	WhaleMinFillUSD  float64
	WhaleLookback    time.Duration

	// Sizing and risk
	Bankroll          float64
	MaxPositionPct    float64 // cap on a single position as fraction of bankroll
	MinTradeSize      float64
	MaxOpenPositions  int
	MaxTotalExposure  float64
	MaxBucketExposure float64
	DailyLossLimit    float64 // negative number, e.g. -40
	LossCooldown      time.Duration

	// Decision gate
	AutoEdge       float64
	AutoConfidence float64
	AutoMaxSize    float64
	PendingTTL     time.Duration

	// Lifecycle
	StopLossFraction float64 // exit when price < entry * fraction
	TakeProfitMargin float64 // exit when price - entry fair > margin
	ExitDiscount     float64 // limit sell priced at live * (1 - discount)

	// Storage
	StorageMode  string // "postgres" or "memory"
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
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		FeedBaseURL:       getEnvOrDefault("FEED_BASE_URL", "https://gamma-api.polymarket.com"),
		GatewayBaseURL:    getEnvOrDefault("GATEWAY_BASE_URL", "https://clob.polymarket.com"),
		GatewayWSURL:      getEnvOrDefault("GATEWAY_WS_URL", "wss://ws-subscriptions-clob.polymarket.com/ws/market"),
		IndexerURL:        os.Getenv("INDEXER_URL"),
		GeocodeURL:        getEnvOrDefault("GEOCODE_URL", "https://geocoding-api.open-meteo.com/v1/search"),
		ForecastURL:       getEnvOrDefault("FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
		TelegramToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:    os.Getenv("TELEGRAM_CHAT_ID"),
		IndexerAPIKey:     os.Getenv("INDEXER_API_KEY"),
		GatewayAPIKey:     os.Getenv("GATEWAY_API_KEY"),
		GatewaySecret:     os.Getenv("GATEWAY_SECRET"),
		GatewayPassphrase: os.Getenv("GATEWAY_PASSPHRASE"),

		ScanInterval:     getDurationOrDefault("SCAN_INTERVAL", 5*time.Minute),
		CommandInterval:  getDurationOrDefault("COMMAND_INTERVAL", 3*time.Second),
		FeedPageLimit:    getIntOrDefault("FEED_PAGE_LIMIT", 100),
		FeedRatePerSec:   getFloat64OrDefault("FEED_RATE_PER_SEC", 5.0),
		MaxOtherPerCycle: getIntOrDefault("MAX_OTHER_PER_CYCLE", 20),

		MinHoursToExpiry: getFloat64OrDefault("MIN_HOURS_TO_EXPIRY", 1.0),
		MinVolume:        getFloat64OrDefault("MIN_VOLUME", 1000.0),
		MinLiquidity:     getFloat64OrDefault("MIN_LIQUIDITY", 500.0),
		NoArbBand:        getFloat64OrDefault("NO_ARB_BAND", 0.025),

		MinEdge:          getFloat64OrDefault("MIN_EDGE", 5.0),
		MinConfidence:    getFloat64OrDefault("MIN_CONFIDENCE", 50.0),
		TakerFee:         getFloat64OrDefault("TAKER_FEE", 0.0),
		NarrowBandWidth:  getFloat64OrDefault("NARROW_BAND_WIDTH", 3.0),
		MinSideLiquidity: getFloat64OrDefault("MIN_SIDE_LIQUIDITY", 100.0),
		WhaleMinFillUSD:  getFloat64OrDefault("WHALE_MIN_FILL_USD", 5000.0),
		WhaleLookback:    getDurationOrDefault("WHALE_LOOKBACK", 6*time.Hour),

		Bankroll:          getFloat64OrDefault("BANKROLL", 1000.0),
		MaxPositionPct:    getFloat64OrDefault("MAX_POSITION_PCT", 0.05),
		MinTradeSize:      getFloat64OrDefault("MIN_TRADE_SIZE", 1.0),
		MaxOpenPositions:  getIntOrDefault("MAX_OPEN_POSITIONS", 10),
		MaxTotalExposure:  getFloat64OrDefault("MAX_TOTAL_EXPOSURE", 250.0),
		MaxBucketExposure: getFloat64OrDefault("MAX_BUCKET_EXPOSURE", 100.0),
		DailyLossLimit:    getFloat64OrDefault("DAILY_LOSS_LIMIT", -40.0),
		LossCooldown:      getDurationOrDefault("LOSS_COOLDOWN", 24*time.Hour),

		AutoEdge:       getFloat64OrDefault("AUTO_EDGE", 15.0),
		AutoConfidence: getFloat64OrDefault("AUTO_CONFIDENCE", 80.0),
		AutoMaxSize:    getFloat64OrDefault("AUTO_MAX_SIZE", 10.0),
		PendingTTL:     getDurationOrDefault("PENDING_TTL", 2*time.Hour),

		StopLossFraction: getFloat64OrDefault("STOP_LOSS_FRACTION", 0.5),
		TakeProfitMargin: getFloat64OrDefault("TAKE_PROFIT_MARGIN", 0.10),
		ExitDiscount:     getFloat64OrDefault("EXIT_DISCOUNT", 0.02),

		StorageMode:  getEnvOrDefault("STORAGE_MODE", "memory"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "polyedge"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "polyedge"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "polyedge"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.FeedBaseURL == "" {
		return fmt.Errorf("FEED_BASE_URL cannot be empty")
	}

	if c.Bankroll <= 0 {
		return fmt.Errorf("BANKROLL must be positive, got %f", c.Bankroll)
	}

	if c.MaxPositionPct <= 0 || c.MaxPositionPct > 1.0 {
		return fmt.Errorf("MAX_POSITION_PCT must be in (0, 1], got %f", c.MaxPositionPct)
	}

	if c.DailyLossLimit >= 0 {
		return fmt.Errorf("DAILY_LOSS_LIMIT must be negative, got %f", c.DailyLossLimit)
	}

	if c.StopLossFraction <= 0 || c.StopLossFraction >= 1.0 {
		return fmt.Errorf("STOP_LOSS_FRACTION must be in (0, 1), got %f", c.StopLossFraction)
	}

	if c.StorageMode != "postgres" && c.StorageMode != "memory" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'memory', got %q", c.StorageMode)
	}

	return nil
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
