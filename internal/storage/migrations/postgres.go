package migrations

import (
	"context"
	"fmt"

	"github.com/HeroDappDev/Claude-Fun/internal/storage/postgres"
)

// RunPostgresMigrations applies the embedded ledger schema files in name order.
// Every file must be safe to re-run.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := load(PostgresFS, "postgres")
	if err != nil {
		return err
	}
	for _, m := range files {
		if _, err := pool.Exec(ctx, m.body); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}
	return nil
}
