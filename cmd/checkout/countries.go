package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var countriesCmd = &cobra.Command{
	Use:   "countries [code]",
	Short: "List countries, or the regions of one country",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCountries,
}

func init() {
	rootCmd.AddCommand(countriesCmd)
}

func runCountries(cmd *cobra.Command, args []string) error {
	catalog, formatter, err := newFormatter()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	if len(args) == 1 {
		code := args[0]
		if _, ok := catalog.Lookup(code); !ok {
			return fmt.Errorf("unknown country %q", code)
		}
		regions := catalog.Regions(code)
		if len(regions) == 0 {
			fmt.Fprintf(w, "%s has no region list; the state field is free text\n", code)
			return nil
		}
		fmt.Fprintf(w, "CODE\t%s\n", catalog.RegionLabel(code))
		for _, r := range regions {
			fmt.Fprintf(w, "%s\t%s\n", r.Code, r.Name)
		}
		return nil
	}

	fmt.Fprintln(w, "CODE\tNAME\tDIAL\tPLACEHOLDER")
	for _, c := range catalog.Countries() {
		fmt.Fprintf(w, "%s\t%s\t+%s\t%s\n", c.Code, c.Name, c.Dial, formatter.OnCountryChange(c.Code))
	}
	return nil
}
