package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

var loadOnce sync.Once

// LoadEnv reads a .env file from the working directory once. A missing file is
// not an error; the process environment is used as is.
func LoadEnv() {
	loadOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// Credit targets for settlement credits.
const (
	CreditTargetAvailable = "available"
	CreditTargetPending   = "pending"
)

// Settings holds every tunable the settlement service reads from the environment.
type Settings struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	CORSOrigins []string

	TransferBaseURL       string
	TransferSecretKey     string
	TransferTimeout       time.Duration
	TransferMaxAttempts   int
	TransferRetryBackoff  time.Duration
	TransferDeadline      time.Duration
	TransferNotFoundGrace time.Duration
	TransferWebhookSecret string
	PaymentWebhookSecret  string
	NameCacheTTL          time.Duration

	PlatformFeeRate        decimal.Decimal
	PayoutFeeRate          decimal.Decimal
	RefundWindow           time.Duration
	SettlementCreditTarget string
}

// Load builds Settings from the environment, applying defaults for anything unset.
func Load() Settings {
	LoadEnv()

	target := strings.ToLower(getEnv("SETTLEMENT_CREDIT_TARGET", CreditTargetAvailable))
	if target != CreditTargetPending {
		target = CreditTargetAvailable
	}

	return Settings{
		Port:        getEnv("PORT", "8081"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		TransferBaseURL:       getEnv("TRANSFER_BASE_URL", "https://sandbox.transfers.example.com/v1"),
		TransferSecretKey:     os.Getenv("TRANSFER_SECRET_KEY"),
		TransferTimeout:       getEnvDuration("TRANSFER_TIMEOUT", 15*time.Second),
		TransferMaxAttempts:   getEnvInt("TRANSFER_MAX_ATTEMPTS", 3),
		TransferRetryBackoff:  getEnvDuration("TRANSFER_RETRY_BACKOFF", time.Second),
		TransferDeadline:      getEnvDuration("TRANSFER_DEADLINE", 45*time.Second),
		TransferNotFoundGrace: getEnvDuration("TRANSFER_NOT_FOUND_GRACE", 24*time.Hour),
		TransferWebhookSecret: os.Getenv("TRANSFER_WEBHOOK_SECRET"),
		PaymentWebhookSecret:  os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		NameCacheTTL:          getEnvDuration("NAME_CACHE_TTL", 24*time.Hour),

		PlatformFeeRate:        getEnvDecimal("PLATFORM_FEE_RATE", decimal.RequireFromString("0.10")),
		PayoutFeeRate:          getEnvDecimal("PAYOUT_FEE_RATE", decimal.RequireFromString("0.015")),
		RefundWindow:           getEnvDuration("REFUND_WINDOW", 24*time.Hour),
		SettlementCreditTarget: target,
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	v, err := decimal.NewFromString(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v.IsNegative() {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
