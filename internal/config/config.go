package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Payment providers.
const (
	ProviderStripe = "stripe"
	ProviderMock   = "mock"
)

const defaultMembershipName = "2 Group Classes / Monthly Membership (Auto-Pay) / In-Studio"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port        int
	CORSOrigins []string
	TrustProxy  bool

	PaymentProvider      string
	StripeSecretKey      string
	StripePublishableKey string
	StripePriceID        string
	StripeAPIURL         string

	MembershipName string
	ChargeAmount   int64
	ChargeCurrency string

	BillingTimezone    string
	BillingAnchorHour  int
	BillingCallTimeout time.Duration
	Compensate         bool

	PhoneFormatter string

	DatabaseURL   string
	EncryptionKey string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	port, err := getEnvInt("PORT", 4001)
	if err != nil {
		return nil, err
	}
	amount, err := getEnvInt("CHARGE_AMOUNT", 4500)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("CHARGE_AMOUNT must be positive, got %d", amount)
	}
	hour, err := getEnvInt("BILLING_ANCHOR_HOUR", 6)
	if err != nil {
		return nil, err
	}
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("BILLING_ANCHOR_HOUR must be between 0 and 23, got %d", hour)
	}
	timeout, err := time.ParseDuration(getEnv("BILLING_CALL_TIMEOUT", "15s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("BILLING_CALL_TIMEOUT must be a positive duration")
	}
	compensate, err := strconv.ParseBool(getEnv("CHECKOUT_COMPENSATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("CHECKOUT_COMPENSATE must be true or false")
	}
	trustProxy, err := strconv.ParseBool(getEnv("TRUST_PROXY", "false"))
	if err != nil {
		return nil, fmt.Errorf("TRUST_PROXY must be true or false")
	}

	cfg := &Config{
		Port:                 port,
		CORSOrigins:          splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		TrustProxy:           trustProxy,
		PaymentProvider:      strings.ToLower(getEnv("PAYMENT_PROVIDER", ProviderStripe)),
		StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
		StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
		StripePriceID:        getEnv("STRIPE_PRICE_ID", ""),
		StripeAPIURL:         getEnv("STRIPE_API_URL", ""),
		MembershipName:       getEnv("MEMBERSHIP_NAME", defaultMembershipName),
		ChargeAmount:         int64(amount),
		ChargeCurrency:       strings.ToLower(getEnv("CHARGE_CURRENCY", "usd")),
		BillingTimezone:      getEnv("BILLING_TIMEZONE", "America/Chicago"),
		BillingAnchorHour:    hour,
		BillingCallTimeout:   timeout,
		Compensate:           compensate,
		PhoneFormatter:       getEnv("PHONE_FORMATTER", "placeholder"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		EncryptionKey:        getEnv("ENCRYPTION_KEY", ""),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
	}

	switch cfg.PaymentProvider {
	case ProviderStripe:
		if cfg.StripeSecretKey == "" {
			return nil, fmt.Errorf("STRIPE_SECRET_KEY is required")
		}
		if cfg.StripePriceID == "" {
			return nil, fmt.Errorf("STRIPE_PRICE_ID is required")
		}
	case ProviderMock:
		if cfg.StripePriceID == "" {
			cfg.StripePriceID = "price_mock_monthly"
		}
	default:
		return nil, fmt.Errorf("PAYMENT_PROVIDER must be %q or %q, got %q", ProviderStripe, ProviderMock, cfg.PaymentProvider)
	}

	if cfg.DatabaseURL != "" {
		if cfg.EncryptionKey == "" {
			return nil, fmt.Errorf("ENCRYPTION_KEY is required when DATABASE_URL is set (must be exactly 32 bytes)")
		}
		if len(cfg.EncryptionKey) != 32 {
			return nil, fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes, got %d", len(cfg.EncryptionKey))
		}
	}

	return cfg, nil
}

// LoadDotEnv sets variables from a .env file that are not already present in
// the environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("%s:%d: expected KEY=VALUE", path, lineNo)
		}
		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))

		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	return scanner.Err()
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return i, nil
}
