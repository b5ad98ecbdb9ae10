package main

import (
	"fmt"

	"github.com/groupclass/checkout/internal/phone"
	"github.com/spf13/cobra"
)

var formatCmd = &cobra.Command{
	Use:   "format <input>",
	Short: "Format and validate a phone number as the form would",
	Args:  cobra.ExactArgs(1),
	RunE:  runFormat,
}

var formatCountry string

func init() {
	rootCmd.AddCommand(formatCmd)
	formatCmd.Flags().StringVar(&formatCountry, "country", "US", "phone country (ISO code)")
}

func runFormat(cmd *cobra.Command, args []string) error {
	catalog, formatter, err := newFormatter()
	if err != nil {
		return err
	}
	if _, ok := catalog.Lookup(formatCountry); !ok {
		return fmt.Errorf("unknown country %q", formatCountry)
	}

	field := phone.NewField(formatter, formatCountry)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "placeholder: %s\n", field.Placeholder())
	fmt.Fprintf(out, "formatted:   %s\n", field.Input(args[0]))
	fmt.Fprintf(out, "valid:       %t\n", field.Valid())
	if e164, err := field.E164(); err == nil {
		fmt.Fprintf(out, "e164:        %s\n", e164)
	}
	return nil
}
