package migration

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/skyfare/internal/clock"
	"github.com/smallbiznis/skyfare/internal/config"
	"github.com/smallbiznis/skyfare/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node, clk clock.Clock, log *zap.Logger) error {
		if cfg.DBAutoMigrate {
			if err := Apply(conn, cfg.DBType); err != nil {
				return err
			}
			log.Info("database schema up to date", zap.String("db_type", cfg.DBType))
		}

		if cfg.BootstrapDemo {
			if err := seed.EnsureDemoData(context.Background(), conn, node, clk.Now()); err != nil {
				return err
			}
			log.Info("demo fare data ensured", zap.String("flight_number", seed.DemoFlightNumber))
		}
		return nil
	}),
)

// Apply runs the embedded postgres migrations, or gorm auto-migration for
// the other dialects.
func Apply(conn *gorm.DB, dbType string) error {
	if strings.EqualFold(strings.TrimSpace(dbType), "postgres") {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}
	return AutoMigrate(conn)
}
