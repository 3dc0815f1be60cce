package main

import (
	"context"
	"fmt"

	farecalcdomain "github.com/smallbiznis/skyfare/internal/farecalc/domain"
	"github.com/spf13/cobra"
)

var quoteReq farecalcdomain.CalculateRequest

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price one fare class on one flight",
	Example: `  farectl quote --flight 1790012345678901248 --fare-class 1790012345678901249
  farectl quote --flight 1790012345678901248 --fare-class 1790012345678901249 --passenger-type child --count 2 -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd.Context(), func(ctx context.Context, d deps) error {
			resp, err := d.FareCalc.Calculate(ctx, quoteReq)
			if err != nil {
				return err
			}
			if outputFormat == "json" {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			return printQuote(cmd, resp)
		})
	},
}

func init() {
	f := quoteCmd.Flags()
	f.StringVar(&quoteReq.FlightID, "flight", "", "Flight id")
	f.StringVar(&quoteReq.FareClassID, "fare-class", "", "Fare class id")
	f.StringVar(&quoteReq.OriginID, "origin", "", "Origin override (defaults to the flight's)")
	f.StringVar(&quoteReq.DestinationID, "destination", "", "Destination override (defaults to the flight's)")
	f.StringVar(&quoteReq.DepartureDate, "departure", "", "Departure date override (defaults to the flight's)")
	f.StringVar(&quoteReq.ReturnDate, "return", "", "Return date for stay rules")
	f.StringVar(&quoteReq.PassengerType, "passenger-type", "adult", "adult, child or infant")
	f.IntVar(&quoteReq.PassengerCount, "count", 1, "Number of passengers")
	_ = quoteCmd.MarkFlagRequired("flight")
	_ = quoteCmd.MarkFlagRequired("fare-class")
	rootCmd.AddCommand(quoteCmd)
}

func printQuote(cmd *cobra.Command, resp *farecalcdomain.CalculateResponse) error {
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintf(tw, "Flight\t%s\n", resp.FlightNumber)
	fmt.Fprintf(tw, "Fare class\t%s (%s)\n", resp.FareClassCode, resp.CabinClass)
	fmt.Fprintf(tw, "Passengers\t%d x %s\n", resp.PassengerCount, resp.PassengerType)
	fmt.Fprintf(tw, "Base fare\t%s\n", formatMinor(resp.BaseFare, resp.Currency))
	fmt.Fprintf(tw, "Class multiplier\t%s\n", resp.Multiplier)
	if resp.PassengerMultiplier != "" {
		fmt.Fprintf(tw, "Passenger multiplier\t%s\n", resp.PassengerMultiplier)
	}
	fmt.Fprintf(tw, "Adjusted fare\t%s\n", formatMinor(resp.AdjustedFare, resp.Currency))
	fmt.Fprintf(tw, "Surcharges\t%s\n", formatMinor(resp.Surcharges, resp.Currency))
	fmt.Fprintf(tw, "Taxes (%s)\t%s\n", resp.TaxRate, formatMinor(resp.Taxes, resp.Currency))
	fmt.Fprintf(tw, "Per passenger\t%s\n", formatMinor(resp.PerPassenger, resp.Currency))
	fmt.Fprintf(tw, "Total\t%s\n", formatMinor(resp.Total, resp.Currency))
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(resp.AppliedRules) == 0 {
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout())
	tw = newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "RULE\tCATEGORY\tDELTA\tDESCRIPTION")
	for _, rule := range resp.AppliedRules {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rule.RuleName, rule.Category, formatMinor(rule.PriceDelta, resp.Currency), rule.Description)
	}
	return tw.Flush()
}
