package claims

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	mghelper "github.com/chainsafe/primary-sale-minter/pkg/pgutil/migrations"
	"github.com/chainsafe/primary-sale-minter/pkg/pgutil"
)

func TestPostgres(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	require.NoError(t, mghelper.CreateSchema(context.Background(), db, &ClaimDao{}))

	now := time.Now().UTC()
	p := NewPostgres(db)
	p.now = func() time.Time { return now }

	exerciseStore(t, p, func(d time.Duration) { now = now.Add(d) })
}
