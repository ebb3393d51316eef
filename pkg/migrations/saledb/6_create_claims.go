package saledb

import (
	"context"
	"log"

	"github.com/chainsafe/primary-sale-minter/pkg/claims"
	mghelper "github.com/chainsafe/primary-sale-minter/pkg/pgutil/migrations"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating claims table...")
		if err := mghelper.CreateSchema(ctx, db, &claims.ClaimDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &claims.ClaimDao{}, "expires_at")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping claims table...")
		if err := mghelper.DropModelIndexes(ctx, db, &claims.ClaimDao{}, "expires_at"); err != nil {
			return err
		}
		return mghelper.DropTables(ctx, db, &claims.ClaimDao{})
	})
}
