package main

import (
	"context"
	"fmt"

	"github.com/smallbiznis/skyfare/internal/migration"
	"github.com/smallbiznis/skyfare/internal/seed"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo flight, fare classes and rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd.Context(), func(ctx context.Context, d deps) error {
			if err := migration.Apply(d.DB, cfg.DBType); err != nil {
				return err
			}
			if err := seed.EnsureDemoData(ctx, d.DB, d.Node, d.Clock.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "demo data ready (flight %s)\n", seed.DemoFlightNumber)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
