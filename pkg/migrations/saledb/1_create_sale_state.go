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
		log.Println("creating sale_state table...")
		return mghelper.CreateSchema(ctx, db, &salestore.SaleStateDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping sale_state table...")
		return mghelper.DropTables(ctx, db, &salestore.SaleStateDao{})
	})
}
