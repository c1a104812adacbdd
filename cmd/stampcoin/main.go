package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/zedanazad43/stampcoin-platform/internal/catalog"
	"github.com/zedanazad43/stampcoin-platform/internal/clock"
	"github.com/zedanazad43/stampcoin-platform/internal/config"
	"github.com/zedanazad43/stampcoin-platform/internal/ledger"
	"github.com/zedanazad43/stampcoin-platform/internal/lock"
	"github.com/zedanazad43/stampcoin-platform/internal/migration"
	"github.com/zedanazad43/stampcoin-platform/internal/mint"
	"github.com/zedanazad43/stampcoin-platform/internal/observability"
	"github.com/zedanazad43/stampcoin-platform/internal/pinning"
	"github.com/zedanazad43/stampcoin-platform/internal/serial"
	"github.com/zedanazad43/stampcoin-platform/internal/server"
	"github.com/zedanazad43/stampcoin-platform/internal/valuation"
	"github.com/zedanazad43/stampcoin-platform/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		lock.Module,
		migration.Module,

		// Functional domains
		catalog.Module,
		valuation.Module,
		serial.Module,
		pinning.Module,
		ledger.Module,
		mint.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
