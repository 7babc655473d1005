// Package configs provides application configuration loaded from environment variables.
// Secrets and run-level tuning come from the environment; the static keyword
// vocabulary (categories, marker words) comes from a YAML file.
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all application configuration.
// Load it once at startup using AppLoad() and pass it down explicitly.
type AppConfig struct {
	// DBDSN is the ClickHouse connection string.
	DBDSN string

	// ServerPort is the port the read API listens on.
	ServerPort string

	// LogLevel is a logrus level name ("debug", "info", ...).
	LogLevel string

	// OutputDir is where exchange files (CSV/JSON) are written.
	OutputDir string

	// Kafka contains settings for publishing sourcing decisions.
	Kafka KafkaConfig

	// Coupang contains marketplace API credentials.
	Coupang CoupangConfig

	// SearchAd contains ad-platform (search volume) API credentials.
	SearchAd SearchAdConfig

	// DataLab contains search-trend API credentials.
	DataLab DataLabConfig

	// Wholesale contains wholesale site credentials and browser settings.
	Wholesale WholesaleConfig

	// Pipeline contains worker, retry and sampling settings.
	Pipeline PipelineConfig

	// Margin contains the cost model.
	Margin MarginConfig

	// Seasonal contains spike detection thresholds.
	Seasonal SeasonalConfig

	// Vocabulary holds categories and marker words loaded from YAML.
	Vocabulary Vocabulary
}

// KafkaConfig holds Kafka connection settings.
type KafkaConfig struct {
	// Broker is the Kafka broker address (e.g., "localhost:9092"). Empty disables publishing.
	Broker string

	// Topic is the Kafka topic for sourcing decisions.
	Topic string
}

// CoupangConfig holds marketplace affiliate API credentials.
type CoupangConfig struct {
	AccessKey string
	SecretKey string
	SubID     string
}

// Enabled reports whether both keys are present.
func (c CoupangConfig) Enabled() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}

// SearchAdConfig holds ad-platform API credentials.
type SearchAdConfig struct {
	CustomerID    string
	AccessLicense string
	SecretKey     string
}

func (c SearchAdConfig) Enabled() bool {
	return c.CustomerID != "" && c.AccessLicense != "" && c.SecretKey != ""
}

// DataLabConfig holds search-trend API credentials.
type DataLabConfig struct {
	ClientID     string
	ClientSecret string

	// TrendStartDate is the first month requested for seasonal series.
	TrendStartDate string
}

func (c DataLabConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// WholesaleConfig holds wholesale site credentials and browser settings.
type WholesaleConfig struct {
	DomeggookID string
	DomeggookPW string
	OwnerclanID string
	OwnerclanPW string

	// Headless runs Chrome without a window.
	Headless bool

	// PageTimeout bounds a single navigation or selector wait.
	PageTimeout time.Duration

	// MinDelay and MaxDelay bound the randomized pause between searches.
	MinDelay time.Duration
	MaxDelay time.Duration

	// MaxListings is the number of listings scraped per source and keyword.
	MaxListings int

	// ScreenshotDir stores visual verification screenshots.
	ScreenshotDir string
}

// PipelineConfig holds run-level sampling and retry settings.
type PipelineConfig struct {
	// Workers bounds concurrent keywords in API sampling stages.
	Workers int

	// PerCategoryLimit caps keywords collected per ranking category.
	PerCategoryLimit int

	// CallsPerKeyword is the number of independent marketplace searches per keyword.
	CallsPerKeyword int

	// ProductsPerCall is the page size of one marketplace search.
	ProductsPerCall int

	// RequestInterval is the minimum delay between calls to one signed API.
	RequestInterval time.Duration

	// RetryAttempts and RetryDelay define the fixed retry policy.
	RetryAttempts int
	RetryDelay    time.Duration

	// RunTimeout is the ceiling for a whole run.
	RunTimeout time.Duration

	// VisualFallback enables browser verification when the API sampled no fast-delivery items.
	VisualFallback bool
}

// MarginConfig is the cost model applied to every (retail, wholesale) pair.
type MarginConfig struct {
	PlatformFeeRate float64
	AdRate          float64
	ShippingCost    float64
	VATRate         float64
	TargetMargin    float64

	// StrongVolume is the monthly search volume that earns the "strongly recommended" tag.
	StrongVolume int
}

// SeasonalConfig holds spike detection thresholds.
type SeasonalConfig struct {
	SpikeThreshold float64
	RepeatMinYears int
}

// getDatabaseDSN constructs the ClickHouse DSN from environment variables.
func getDatabaseDSN() string {
	dbUser := getEnv("CLICKHOUSE_USER", "user")
	dbPassword := getEnv("CLICKHOUSE_PASSWORD", "password")
	dbHost := getEnv("CLICKHOUSE_HOST", "localhost")
	dbPort := getEnv("CLICKHOUSE_TCP_PORT", "9000")
	dbName := getEnv("CLICKHOUSE_DB", "sourcing")

	return fmt.Sprintf(
		"clickhouse://%s:%s@%s:%s/%s?dial_timeout=10s&read_timeout=20s",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)
}

// AppLoad loads all application configuration from environment variables.
// It attempts to load a .env file first (for local development).
// Call this once at application startup.
func AppLoad() (*AppConfig, error) {
	_ = godotenv.Load() // Ignore error - .env is optional

	vocab, err := LoadVocabulary(getEnv("PIPELINE_CONFIG", "configs/pipeline.yaml"))
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		DBDSN:      getDatabaseDSN(),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		OutputDir:  getEnv("OUTPUT_DIR", "output"),
		Kafka: KafkaConfig{
			Broker: getEnv("KAFKA_BROKER", ""),
			Topic:  getEnv("KAFKA_DECISION_TOPIC", "sourcing_decisions"),
		},
		Coupang: CoupangConfig{
			AccessKey: strings.TrimSpace(getEnv("COUPANG_ACCESS_KEY", "")),
			SecretKey: strings.TrimSpace(getEnv("COUPANG_SECRET_KEY", "")),
			SubID:     getEnv("COUPANG_SUB_ID", "coupang_gross"),
		},
		SearchAd: SearchAdConfig{
			CustomerID:    strings.TrimSpace(getEnv("NAVER_AD_CUSTOMER_ID", "")),
			AccessLicense: strings.TrimSpace(getEnv("NAVER_AD_ACCESS_LICENSE", "")),
			SecretKey:     strings.TrimSpace(getEnv("NAVER_AD_SECRET_KEY", "")),
		},
		DataLab: DataLabConfig{
			ClientID:       strings.TrimSpace(getEnv("NAVER_CLIENT_ID", "")),
			ClientSecret:   strings.TrimSpace(getEnv("NAVER_CLIENT_SECRET", "")),
			TrendStartDate: getEnv("DATALAB_START_DATE", "2023-01-01"),
		},
		Wholesale: WholesaleConfig{
			DomeggookID:   strings.TrimSpace(getEnv("DOMEGGOOK_ID", "")),
			DomeggookPW:   strings.TrimSpace(getEnv("DOMEGGOOK_PW", "")),
			OwnerclanID:   strings.TrimSpace(getEnv("OWNERCLAN_ID", "")),
			OwnerclanPW:   strings.TrimSpace(getEnv("OWNERCLAN_PW", "")),
			Headless:      getEnvBool("BROWSER_HEADLESS", true),
			PageTimeout:   getEnvDuration("BROWSER_PAGE_TIMEOUT", 15*time.Second),
			MinDelay:      getEnvDuration("WHOLESALE_MIN_DELAY", 2*time.Second),
			MaxDelay:      getEnvDuration("WHOLESALE_MAX_DELAY", 4*time.Second),
			MaxListings:   getEnvInt("WHOLESALE_MAX_LISTINGS", 3),
			ScreenshotDir: getEnv("SCREENSHOT_DIR", "debug_screenshots"),
		},
		Pipeline: PipelineConfig{
			Workers:          getEnvInt("PIPELINE_WORKERS", 3),
			PerCategoryLimit: getEnvInt("TREND_PER_CATEGORY_LIMIT", 100),
			CallsPerKeyword:  getEnvInt("COMPETITION_CALLS_PER_KEYWORD", 3),
			ProductsPerCall:  getEnvInt("COMPETITION_PRODUCTS_PER_CALL", 10),
			RequestInterval:  getEnvDuration("API_REQUEST_INTERVAL", 2*time.Second),
			RetryAttempts:    getEnvInt("RETRY_ATTEMPTS", 3),
			RetryDelay:       getEnvDuration("RETRY_DELAY", 2*time.Second),
			RunTimeout:       getEnvDuration("RUN_TIMEOUT", time.Hour),
			VisualFallback:   getEnvBool("VISUAL_FALLBACK", true),
		},
		Margin: MarginConfig{
			PlatformFeeRate: getEnvFloat("MARGIN_PLATFORM_FEE_RATE", 0.11),
			AdRate:          getEnvFloat("MARGIN_AD_RATE", 0.15),
			ShippingCost:    getEnvFloat("MARGIN_SHIPPING_COST", 3000),
			VATRate:         getEnvFloat("MARGIN_VAT_RATE", 0.10),
			TargetMargin:    getEnvFloat("MARGIN_TARGET", 0.15),
			StrongVolume:    getEnvInt("MARGIN_STRONG_VOLUME", 5000),
		},
		Seasonal: SeasonalConfig{
			SpikeThreshold: getEnvFloat("SEASONAL_SPIKE_THRESHOLD", 2.0),
			RepeatMinYears: getEnvInt("SEASONAL_REPEAT_MIN_YEARS", 2),
		},
		Vocabulary: vocab,
	}, nil
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvDuration accepts Go duration strings ("2s", "1h").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
