package lacarta

import (
	"context"

	"github.com/lacarta/lacarta/pkg/store/postgres"
)

// Migrate applies schema migrations for stores that need them. The in-memory
// store has no schema, so this is a no-op there.
func (a *App) Migrate(ctx context.Context, cmd *MigrateCommand) error {
	pg, ok := a.store.(*postgres.Store)
	if !ok {
		a.log.Info().Msg("store has no schema to migrate")
		return nil
	}
	a.log.Info().Msg("running schema migration")
	if err := pg.Migrate(ctx); err != nil {
		return err
	}
	a.log.Info().Msg("schema migration complete")
	return nil
}
