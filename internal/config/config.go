package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	ServerPort int
	LogLevel   string

	StorageDriver string
	DatabaseURL   string
	SQLitePath    string

	JWTSecret []byte

	KafkaBrokers []string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string
	ES_INDEX    string

	TaxRate     decimal.Decimal
	ShippingFee decimal.Decimal

	ChatDelay  time.Duration
	OrderDelay time.Duration

	SessionCacheSize int
	SessionTTL       time.Duration
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		ServerPort: EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:   EnvDefault("LOG_LEVEL", "info"),

		StorageDriver: EnvDefault("STORAGE_DRIVER", "sqlite"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    EnvDefault("SQLITE_PATH", "storefront.db"),

		JWTSecret: []byte(EnvDefault("JWT_SECRET", "storefront-dev-secret")),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ES_URL:      os.Getenv("ES_URL"),
		ES_USER:     os.Getenv("ES_USER"),
		ES_PASSWORD: os.Getenv("ES_PASSWORD"),
		ES_INDEX:    EnvDefault("ES_INDEX", "product"),

		TaxRate:     EnvDecimalDefault("TAX_RATE", decimal.RequireFromString("0.12")),
		ShippingFee: EnvDecimalDefault("SHIPPING_FEE", decimal.RequireFromString("5.00")),

		ChatDelay:  EnvDurationDefault("CHAT_DELAY", time.Second),
		OrderDelay: EnvDurationDefault("ORDER_DELAY", 1500*time.Millisecond),

		SessionCacheSize: EnvIntDefault("SESSION_CACHE_SIZE", 10000),
		SessionTTL:       EnvDurationDefault("SESSION_TTL", 30*time.Minute),
	}

	if cfg.StorageDriver == "postgres" {
		MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	}

	return cfg, nil
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDecimalDefault(key string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		return def
	}
	return d
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}
