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
		log.Println("creating role_members table...")
		if err := mghelper.CreateSchema(ctx, db, &salestore.RoleMemberDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &salestore.RoleMemberDao{}, "account")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping role_members table...")
		return mghelper.DropTables(ctx, db, &salestore.RoleMemberDao{})
	})
}
