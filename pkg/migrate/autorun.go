package migrate

import (
	"context"
	"fmt"

	"github.com/baxeinwear/storefront-backend/pkg/config"
	"github.com/baxeinwear/storefront-backend/pkg/db"
	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	"github.com/baxeinwear/storefront-backend/pkg/logger"
)

// MaybeRunDev brings the schema up to date on dev servers started with
// BAXEINWEAR_AUTO_MIGRATE. The SQL files are Postgres-only, so sqlite
// databases get their tables from the gorm models instead.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	ctx = logg.WithFields(ctx, map[string]any{"driver": cfg.DB.Driver})

	if Dialect(cfg.DB.Driver) == "sqlite3" {
		if err := client.DB().WithContext(ctx).AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("sqlite automigrate: %w", err)
		}
		logg.Info(ctx, "migrate.sqlite_models_applied")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("unwrapping sql.DB: %w", err)
	}
	if err := Embedded(sqlDB, cfg.DB.Driver).Exec(ctx, "up"); err != nil {
		return err
	}
	logg.Info(ctx, "migrate.embedded_up_applied")
	return nil
}
