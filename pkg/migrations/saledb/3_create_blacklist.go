package saledb

import (
	"context"
	"log"

	mghelper "github.com/chainsafe/primary-sale-minter/pkg/pgutil/migrations"
	"github.com/chainsafe/primary-sale-minter/pkg/salestore"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating blacklist table...")
		if err := mghelper.CreateSchema(ctx, db, &salestore.BlacklistDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &salestore.BlacklistDao{}, "blacklisted")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping blacklist table...")
		return mghelper.DropTables(ctx, db, &salestore.BlacklistDao{})
	})
}
