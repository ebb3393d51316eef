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
		log.Println("creating sale_events table...")
		if err := mghelper.CreateSchema(ctx, db, &salestore.SaleEventDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &salestore.SaleEventDao{}, "kind", "account")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping sale_events table...")
		if err := mghelper.DropModelIndexes(ctx, db, &salestore.SaleEventDao{}, "kind", "account"); err != nil {
			return err
		}
		return mghelper.DropTables(ctx, db, &salestore.SaleEventDao{})
	})
}
