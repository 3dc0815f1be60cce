package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/skyfare/internal/clock"
	"github.com/smallbiznis/skyfare/internal/config"
	"github.com/smallbiznis/skyfare/internal/farecalc"
	farecalcdomain "github.com/smallbiznis/skyfare/internal/farecalc/domain"
	"github.com/smallbiznis/skyfare/internal/fareclass"
	fareclassdomain "github.com/smallbiznis/skyfare/internal/fareclass/domain"
	"github.com/smallbiznis/skyfare/internal/farerule"
	"github.com/smallbiznis/skyfare/internal/flight"
	"github.com/smallbiznis/skyfare/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	outputFormat string
	verbose      bool
	cfg          config.Config
)

var rootCmd = &cobra.Command{
	Use:   "farectl",
	Short: "Operate the skyfare fare engine from the command line",
	Long: `farectl runs schema migrations, seeds demo data, prints condition schemas
and prices itineraries directly against the fare database, without going
through the HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		switch outputFormat {
		case "table", "json":
			return nil
		default:
			return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", outputFormat)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log database and pipeline activity to stderr")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// deps is the slice of the service graph the commands need.
type deps struct {
	fx.In

	DB           *gorm.DB
	Node         *snowflake.Node
	Clock        clock.Clock
	Log          *zap.Logger
	FareCalc     farecalcdomain.Service
	FareClassSvc fareclassdomain.Service
}

// withDeps boots the database and fare services, runs fn, then shuts down.
func withDeps(ctx context.Context, fn func(ctx context.Context, d deps) error) error {
	var d deps
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg),
		fx.Provide(newLogger),
		fx.Provide(config.NewPricingConfigHolder),
		fx.Provide(func(c config.Config) (*snowflake.Node, error) {
			return snowflake.NewNode(c.SnowflakeNodeID)
		}),
		db.Module,
		clock.Module,
		flight.Module,
		fareclass.Module,
		farerule.Module,
		farecalc.Module,
		fx.Invoke(func(p deps) { d = p }),
	)

	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	return fn(ctx, d)
}

func newLogger() (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}
