package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "CORS_ORIGINS", "TRUST_PROXY", "PAYMENT_PROVIDER", "STRIPE_SECRET_KEY", "STRIPE_PUBLISHABLE_KEY",
	"STRIPE_PRICE_ID", "STRIPE_API_URL", "MEMBERSHIP_NAME", "CHARGE_AMOUNT", "CHARGE_CURRENCY",
	"BILLING_TIMEZONE", "BILLING_ANCHOR_HOUR", "BILLING_CALL_TIMEOUT", "CHECKOUT_COMPENSATE",
	"PHONE_FORMATTER", "DATABASE_URL", "ENCRYPTION_KEY", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv blanks every variable Load reads. Empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_MockDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("PAYMENT_PROVIDER", "mock")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4001, cfg.Port)
	assert.Equal(t, ProviderMock, cfg.PaymentProvider)
	assert.Equal(t, "price_mock_monthly", cfg.StripePriceID)
	assert.Equal(t, int64(4500), cfg.ChargeAmount)
	assert.Equal(t, "usd", cfg.ChargeCurrency)
	assert.Equal(t, defaultMembershipName, cfg.MembershipName)
	assert.Equal(t, "America/Chicago", cfg.BillingTimezone)
	assert.Equal(t, 6, cfg.BillingAnchorHour)
	assert.Equal(t, 15*time.Second, cfg.BillingCallTimeout)
	assert.True(t, cfg.Compensate)
	assert.Equal(t, "placeholder", cfg.PhoneFormatter)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.False(t, cfg.TrustProxy)
}

func TestLoad_Stripe(t *testing.T) {
	clearEnv(t)
	t.Setenv("PAYMENT_PROVIDER", "stripe")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("STRIPE_PRICE_ID", "price_123")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("CHECKOUT_COMPENSATE", "false")
	t.Setenv("BILLING_CALL_TIMEOUT", "5s")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk_test_123", cfg.StripeSecretKey)
	assert.Equal(t, "price_123", cfg.StripePriceID)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.Compensate)
	assert.Equal(t, 5*time.Second, cfg.BillingCallTimeout)
	assert.True(t, cfg.TrustProxy)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{"PAYMENT_PROVIDER": "stripe"}, "STRIPE_SECRET_KEY is required"},
		{"missing price", map[string]string{"PAYMENT_PROVIDER": "stripe", "STRIPE_SECRET_KEY": "sk"}, "STRIPE_PRICE_ID is required"},
		{"unknown provider", map[string]string{"PAYMENT_PROVIDER": "paypal"}, "PAYMENT_PROVIDER must be"},
		{"bad port", map[string]string{"PAYMENT_PROVIDER": "mock", "PORT": "http"}, "PORT must be an integer"},
		{"bad hour", map[string]string{"PAYMENT_PROVIDER": "mock", "BILLING_ANCHOR_HOUR": "24"}, "BILLING_ANCHOR_HOUR must be between 0 and 23"},
		{"zero amount", map[string]string{"PAYMENT_PROVIDER": "mock", "CHARGE_AMOUNT": "0"}, "CHARGE_AMOUNT must be positive"},
		{"bad timeout", map[string]string{"PAYMENT_PROVIDER": "mock", "BILLING_CALL_TIMEOUT": "soon"}, "BILLING_CALL_TIMEOUT"},
		{"bad trust proxy", map[string]string{"PAYMENT_PROVIDER": "mock", "TRUST_PROXY": "maybe"}, "TRUST_PROXY must be true or false"},
		{"db without key", map[string]string{"PAYMENT_PROVIDER": "mock", "DATABASE_URL": "postgres://x"}, "ENCRYPTION_KEY is required"},
		{"short key", map[string]string{"PAYMENT_PROVIDER": "mock", "DATABASE_URL": "postgres://x", "ENCRYPTION_KEY": "short"}, "exactly 32 bytes, got 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# local settings\n" +
		"CHECKOUT_TEST_A=one\n" +
		"export CHECKOUT_TEST_B=\"two words\"\n" +
		"\n" +
		"CHECKOUT_TEST_C='kept'\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CHECKOUT_TEST_C", "from-env")
	t.Cleanup(func() {
		os.Unsetenv("CHECKOUT_TEST_A")
		os.Unsetenv("CHECKOUT_TEST_B")
	})

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "one", os.Getenv("CHECKOUT_TEST_A"))
	assert.Equal(t, "two words", os.Getenv("CHECKOUT_TEST_B"))
	assert.Equal(t, "from-env", os.Getenv("CHECKOUT_TEST_C"), "existing variables win")
}

func TestLoadDotEnv_Missing(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestLoadDotEnv_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JUST_A_KEY\n"), 0o600))
	assert.ErrorContains(t, LoadDotEnv(path), ":1: expected KEY=VALUE")
}
