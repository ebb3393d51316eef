// Package saledb holds all the migrations for the sale database
package saledb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the sale database
var Migrations = migrate.NewMigrations()
