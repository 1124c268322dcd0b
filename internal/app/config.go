package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// StorageDriver выбирает реализацию хранилища.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска сервиса.
type Config struct {
	HTTPAddr string
	// OpsAddr — отдельный listener для /metrics и health-проб.
	OpsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	KafkaBrokers string

	PriceDriftPercent   float64
	TaxMinor            int64
	OrderNumberPrefix   string
	OrderNumberAttempts int

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
}

// DefaultConfig возвращает настройки для локального запуска.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		OpsAddr:             ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		PriceDriftPercent:   10,
		TaxMinor:            0,
		OrderNumberPrefix:   "ORD",
		OrderNumberAttempts: 5,
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    50 * time.Millisecond,
	}
}

// ReadConfig собирает конфигурацию из переменных окружения поверх значений
// по умолчанию.
func ReadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("CHECKOUT_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("CHECKOUT_OPS_ADDR"); v != "" {
		cfg.OpsAddr = v
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("CHECKOUT_STORAGE_DRIVER"))); v != "" {
		cfg.StorageDriver = StorageDriver(v)
	}
	if v := os.Getenv("CHECKOUT_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
		if cfg.StorageDriver == StorageDriverMemory && os.Getenv("CHECKOUT_STORAGE_DRIVER") == "" {
			cfg.StorageDriver = StorageDriverPostgres
		}
	}
	if v := os.Getenv("CHECKOUT_POSTGRES_AUTO_MIGRATE"); v != "" {
		cfg.PostgresAutoMigrate = parseBool(v, cfg.PostgresAutoMigrate)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = v
	}
	if v := os.Getenv("CHECKOUT_PRICE_DRIFT_PERCENT"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			cfg.PriceDriftPercent = parsed
		}
	}
	if v := os.Getenv("CHECKOUT_TAX_MINOR"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed >= 0 {
			cfg.TaxMinor = parsed
		}
	}
	if v := os.Getenv("CHECKOUT_ORDER_NUMBER_PREFIX"); v != "" {
		cfg.OrderNumberPrefix = v
	}
	if v := os.Getenv("CHECKOUT_ORDER_NUMBER_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.OrderNumberAttempts = parsed
		}
	}
	if v := os.Getenv("CHECKOUT_OUTBOX_POLL_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			cfg.OutboxPollInterval = parsed
		}
	}
	if v := os.Getenv("CHECKOUT_OUTBOX_BATCH_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.OutboxBatchSize = parsed
		}
	}
	if v := os.Getenv("CHECKOUT_OUTBOX_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.OutboxMaxAttempts = parsed
		}
	}
	if v := os.Getenv("CHECKOUT_OUTBOX_RETRY_DELAY"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed >= 0 {
			cfg.OutboxRetryDelay = parsed
		}
	}

	return cfg
}

func parseBool(raw string, fallback bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return parsed
}
