package claims

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// ClaimDao maps the 'claims' table. A null expires_at never expires.
type ClaimDao struct {
	bun.BaseModel `bun:"table:claims,alias:cl"`
	Key           string    `bun:"claim_key,pk,type:varchar(160)"`
	ExpiresAt     time.Time `bun:"expires_at,nullzero"`
	ClaimedAt     time.Time `bun:"claimed_at,nullzero,notnull,default:current_timestamp"`
}

// Postgres keeps claims in the sale database.
type Postgres struct {
	db  *bun.DB
	now func() time.Time
}

// NewPostgres creates a store on db. The claims table comes from the sale
// migrations.
func NewPostgres(db *bun.DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

func (p *Postgres) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	now := p.now().UTC()
	dao := &ClaimDao{Key: key}
	if ttl > 0 {
		dao.ExpiresAt = now.Add(ttl)
	}

	var claimed bool
	err := p.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*ClaimDao)(nil)).
			Where("claim_key = ?", key).
			Where("expires_at IS NOT NULL").
			Where("expires_at <= ?", now).
			Exec(ctx); err != nil {
			return fmt.Errorf("drop expired claim: %w", err)
		}

		res, err := tx.NewInsert().Model(dao).On("CONFLICT (claim_key) DO NOTHING").Exec(ctx)
		if err != nil {
			return fmt.Errorf("insert claim: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		claimed = n == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return claimed, nil
}

func (p *Postgres) Release(ctx context.Context, key string) error {
	if _, err := p.db.NewDelete().Model((*ClaimDao)(nil)).Where("claim_key = ?", key).Exec(ctx); err != nil {
		return fmt.Errorf("release claim: %w", err)
	}
	return nil
}
