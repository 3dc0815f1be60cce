package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var availabilityCmd = &cobra.Command{
	Use:     "availability <flight-id>",
	Short:   "Show nested seat availability per fare class",
	Example: `  farectl availability 1790012345678901248`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd.Context(), func(ctx context.Context, d deps) error {
			resp, err := d.FareClassSvc.NestedAvailability(ctx, args[0])
			if err != nil {
				return err
			}
			if outputFormat == "json" {
				return writeJSON(cmd.OutOrStdout(), resp)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Flight %s: economy %d, business %d unsold\n\n", resp.FlightNumber, resp.EconomyAvailable, resp.BusinessAvailable)
			tw := newTable(out)
			fmt.Fprintln(tw, "CODE\tCABIN\tPOOL\tPRIORITY\tALLOCATED\tAVAILABLE")
			for _, fc := range resp.FareClasses {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%d\n", fc.Code, fc.CabinClass, fc.SeatPool, fc.Priority, formatSeats(fc.SeatsAllocated), fc.SeatsAvailable)
			}
			return tw.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(availabilityCmd)
}
