package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/errs"
)

type Config struct {
	HTTPPort string
	LogLevel string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	KafkaBrokers           []string
	KafkaNotificationTopic string
	NotifyWorkers          int
	NotifyQueueSize        int
	NotifySendTimeout      time.Duration

	RedisAddr     string
	RenderLockTTL time.Duration

	InvoiceServiceURL         string
	InvoiceServiceTimeout     time.Duration
	InvoiceTriggerConcurrency int
	InvoiceTriggerTimeout     time.Duration

	QRSecret      string
	OTPBcryptCost int

	TravelSpeed       float64
	CategoryCacheSize int
	CategoryCacheTTL  time.Duration

	Pricing services.PricingPolicy

	ChallengeExpirySchedule string
	InvoiceRetrySchedule    string
	InvoiceRetryBatchSize   int
}

// DSN returns the Postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// LoadConfig reads the environment, after loading envFile when it exists.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	r := envReader{}
	defaults := services.DefaultPricingPolicy()

	cfg := Config{
		HTTPPort: r.str("HTTP_PORT", "8080"),
		LogLevel: r.str("LOG_LEVEL", "info"),

		DBHost:     r.str("DB_HOST", "localhost"),
		DBPort:     r.str("DB_PORT", "5432"),
		DBUser:     r.str("DB_USER", "postgres"),
		DBPassword: r.str("DB_PASSWORD", ""),
		DBName:     r.str("DB_NAME", "orderflow"),
		DBSslMode:  r.str("DB_SSLMODE", "disable"),

		KafkaBrokers:           r.list("KAFKA_BROKERS", "localhost:9092"),
		KafkaNotificationTopic: r.str("KAFKA_NOTIFICATION_TOPIC", "notifications"),
		NotifyWorkers:          r.integer("NOTIFY_WORKERS", 4),
		NotifyQueueSize:        r.integer("NOTIFY_QUEUE_SIZE", 256),
		NotifySendTimeout:      r.duration("NOTIFY_SEND_TIMEOUT", 5*time.Second),

		RedisAddr:     r.str("REDIS_ADDR", "localhost:6379"),
		RenderLockTTL: r.duration("RENDER_LOCK_TTL", time.Minute),

		InvoiceServiceURL:         r.str("INVOICE_SERVICE_URL", "http://localhost:8090"),
		InvoiceServiceTimeout:     r.duration("INVOICE_SERVICE_TIMEOUT", 10*time.Second),
		InvoiceTriggerConcurrency: r.integer("INVOICE_TRIGGER_CONCURRENCY", 8),
		InvoiceTriggerTimeout:     r.duration("INVOICE_TRIGGER_TIMEOUT", 30*time.Second),

		QRSecret:      r.str("QR_SECRET", ""),
		OTPBcryptCost: r.integer("OTP_BCRYPT_COST", 10),

		TravelSpeed:       r.float("TRAVEL_SPEED_MPS", 6),
		CategoryCacheSize: r.integer("CATEGORY_CACHE_SIZE", 512),
		CategoryCacheTTL:  r.duration("CATEGORY_CACHE_TTL", 5*time.Minute),

		Pricing: services.PricingPolicy{
			FreeDeliveryThreshold: r.money("FREE_DELIVERY_THRESHOLD", defaults.FreeDeliveryThreshold),
			StandardDeliveryFee:   r.money("STANDARD_DELIVERY_FEE", defaults.StandardDeliveryFee),
			ExpressDeliveryFee:    r.money("EXPRESS_DELIVERY_FEE", defaults.ExpressDeliveryFee),
			PlatformFee:           r.money("PLATFORM_FEE", defaults.PlatformFee),
			StandardTransit:       r.duration("STANDARD_TRANSIT", defaults.StandardTransit),
			ExpressTransit:        r.duration("EXPRESS_TRANSIT", defaults.ExpressTransit),
		},

		ChallengeExpirySchedule: r.str("CHALLENGE_EXPIRY_SCHEDULE", "0 * * * * *"),
		InvoiceRetrySchedule:    r.str("INVOICE_RETRY_SCHEDULE", "0 */5 * * * *"),
		InvoiceRetryBatchSize:   r.integer("INVOICE_RETRY_BATCH_SIZE", 50),
	}

	if cfg.QRSecret == "" {
		r.errs = append(r.errs, errs.NewValueIsRequiredError("QR_SECRET"))
	}
	if err := errors.Join(r.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envReader collects parse failures so every bad variable is reported at once.
type envReader struct {
	errs []error
}

func (r *envReader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (r *envReader) list(key, def string) []string {
	var out []string
	for _, part := range strings.Split(r.str(key, def), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (r *envReader) integer(key string, def int) int {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		r.errs = append(r.errs, errs.NewValueIsInvalidErrorWithCause(key, err))
		return def
	}
	return v
}

func (r *envReader) float(key string, def float64) float64 {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.errs = append(r.errs, errs.NewValueIsInvalidErrorWithCause(key, err))
		return def
	}
	return v
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		r.errs = append(r.errs, errs.NewValueIsInvalidErrorWithCause(key, err))
		return def
	}
	return v
}

func (r *envReader) money(key string, def decimal.Decimal) decimal.Decimal {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		r.errs = append(r.errs, errs.NewValueIsInvalidErrorWithCause(key, err))
		return def
	}
	return v
}
