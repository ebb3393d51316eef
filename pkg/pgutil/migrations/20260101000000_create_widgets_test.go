package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// widgetMigrations registers from this file so the migration takes its name.
func widgetMigrations() *migrate.Migrations {
	ms := migrate.NewMigrations()
	ms.MustRegister(func(ctx context.Context, db *bun.DB) error {
		return CreateSchema(ctx, db, &widgetDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		return DropTables(ctx, db, &widgetDao{})
	})
	return ms
}
