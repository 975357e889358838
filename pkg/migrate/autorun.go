package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/partnerz-backend/pkg/config"
	"github.com/angelmondragon/partnerz-backend/pkg/db"
	"github.com/angelmondragon/partnerz-backend/pkg/logger"
)

// MaybeRun applies the embedded migrations when auto-migrate is enabled. Outside
// dev it only runs against sqlite, where the database is local to the process.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if !cfg.App.IsDev() && !cfg.DB.IsSQLite() {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	dialect := Dialect(cfg.DB)
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": string(dialect)})
	logg.Info(ctx, "running goose migrations (auto-run)")

	results, err := Up(ctx, sqlDB, dialect)
	if err != nil {
		return err
	}

	logg.Info(logg.WithField(ctx, "applied", len(results)), "goose migrations completed")
	return nil
}
