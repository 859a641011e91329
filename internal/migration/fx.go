package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	auditdomain "github.com/smallbiznis/courierfare/internal/audit/domain"
	catalogdomain "github.com/smallbiznis/courierfare/internal/catalog/domain"
	"github.com/smallbiznis/courierfare/internal/config"
	distancedomain "github.com/smallbiznis/courierfare/internal/distance/domain"
	ruledomain "github.com/smallbiznis/courierfare/internal/pricingrule/domain"
	"github.com/smallbiznis/courierfare/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// mysql and sqlite development setups use gorm's migrator.
			if err := conn.AutoMigrate(
				&ruledomain.Rule{},
				&distancedomain.CacheEntry{},
				&auditdomain.QuoteAuditRecord{},
				&catalogdomain.Product{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureStarterRules(conn)
	}),
)
