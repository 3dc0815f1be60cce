package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/skyfare/internal/clock"
	"github.com/smallbiznis/skyfare/internal/config"
	"github.com/smallbiznis/skyfare/internal/migration"
	"github.com/smallbiznis/skyfare/internal/observability"
	"github.com/smallbiznis/skyfare/internal/server"
	"github.com/smallbiznis/skyfare/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Fare domains and the HTTP surface
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNodeID)
}
