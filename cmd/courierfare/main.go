package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/smallbiznis/courierfare/internal/audit"
	"github.com/smallbiznis/courierfare/internal/catalog"
	"github.com/smallbiznis/courierfare/internal/clock"
	"github.com/smallbiznis/courierfare/internal/config"
	"github.com/smallbiznis/courierfare/internal/distance"
	"github.com/smallbiznis/courierfare/internal/locking"
	"github.com/smallbiznis/courierfare/internal/migration"
	"github.com/smallbiznis/courierfare/internal/observability"
	"github.com/smallbiznis/courierfare/internal/pricingrule"
	"github.com/smallbiznis/courierfare/internal/quote"
	"github.com/smallbiznis/courierfare/internal/server"
	"github.com/smallbiznis/courierfare/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		locking.Module,
		migration.Module,

		// Functional domains
		pricingrule.Module,
		distance.Module,
		quote.Module,
		audit.Module,
		catalog.Module,

		server.Module,
	)

	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
