package migration

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	catalogdomain "github.com/zedanazad43/stampcoin-platform/internal/catalog/domain"
	"github.com/zedanazad43/stampcoin-platform/internal/config"
	ledgerdomain "github.com/zedanazad43/stampcoin-platform/internal/ledger/domain"
	mintdomain "github.com/zedanazad43/stampcoin-platform/internal/mint/domain"
	"github.com/zedanazad43/stampcoin-platform/internal/seed"
	serialdomain "github.com/zedanazad43/stampcoin-platform/internal/serial/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, economy *config.EconomyHolder, log *zap.Logger) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Versioned migrations are written for postgres. Other
			// dialects get the schema from the model definitions.
			log.Named("migrations").Info("using auto migration", zap.String("db_type", cfg.DBType))
			if err := conn.AutoMigrate(
				&catalogdomain.Item{},
				&mintdomain.Record{},
				&ledgerdomain.Distribution{},
				&ledgerdomain.Aggregate{},
				&serialdomain.Counter{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureLedgerAggregate(conn, economy.Current().MaxSupply)
	}),
)
