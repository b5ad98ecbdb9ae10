package main

import (
	"fmt"
	"os"

	"github.com/groupclass/checkout/internal/phone"
	"github.com/groupclass/checkout/internal/refdata"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	formatterKind string
)

var rootCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Membership checkout from the terminal",
	Long: `Checkout fills in and submits the membership checkout form.

Examples:
  checkout countries
  checkout format --country US 2015550123
  checkout subscribe --email ada@example.com --phone 2015550123 ... --accept-terms`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&formatterKind, "formatter", envOr("PHONE_FORMATTER", phone.KindPlaceholder),
		"phone formatter (placeholder, libphonenumber)")
}

func newFormatter() (*refdata.Catalog, phone.Formatter, error) {
	catalog := refdata.Default()
	f, err := phone.New(formatterKind, catalog)
	if err != nil {
		return nil, nil, err
	}
	return catalog, f, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
