package salestore

import (
	"fmt"
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/chainsafe/primary-sale-minter/pkg/sale"
)

// stateRowID is the primary key of the single sale_state row.
const stateRowID = 1

// SaleStateDao maps the singleton 'sale_state' table: the active sale terms,
// the global counters and the treasury.
type SaleStateDao struct {
	bun.BaseModel   `bun:"table:sale_state,alias:ss"`
	ID              int16     `bun:"id,pk"`
	Administrator   string    `bun:"administrator,notnull,type:varchar(42)"`
	StartTime       time.Time `bun:"start_time,notnull"`
	EndTime         time.Time `bun:"end_time,notnull"`
	SupplyCap       int64     `bun:"supply_cap,notnull"`
	UnitPrice       string    `bun:"unit_price,notnull,type:numeric(38,18)"`
	PerAccountCap   int64     `bun:"per_account_cap,notnull"`
	TotalAdmitted   int64     `bun:"total_admitted,notnull"`
	TreasuryBalance string    `bun:"treasury_balance,notnull,type:numeric(38,18)"`
	LastEventSeq    int64     `bun:"last_event_seq,notnull"`
	InitializedAt   time.Time `bun:"initialized_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// RoleMemberDao maps the 'role_members' table.
type RoleMemberDao struct {
	bun.BaseModel `bun:"table:role_members,alias:rm"`
	Role          string    `bun:"role,pk,type:varchar(16)"`
	Account       string    `bun:"account,pk,type:varchar(42)"`
	GrantedAt     time.Time `bun:"granted_at,nullzero,notnull,default:current_timestamp"`
}

// BlacklistDao maps the 'blacklist' table. Rows are kept when an account is
// cleared so the last change stays visible.
type BlacklistDao struct {
	bun.BaseModel `bun:"table:blacklist,alias:bl"`
	Account       string    `bun:"account,pk,type:varchar(42)"`
	Blacklisted   bool      `bun:"blacklisted,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// AccountAdmissionDao maps the 'account_admissions' table holding the
// per-account quota counters.
type AccountAdmissionDao struct {
	bun.BaseModel `bun:"table:account_admissions,alias:aa"`
	Account       string    `bun:"account,pk,type:varchar(42)"`
	Admitted      int64     `bun:"admitted,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// SaleEventDao maps the append-only 'sale_events' table.
type SaleEventDao struct {
	bun.BaseModel `bun:"table:sale_events,alias:se"`
	Seq           int64       `bun:"seq,pk"`
	EventID       string      `bun:"event_id,unique,notnull,type:uuid"`
	Kind          string      `bun:"kind,notnull,type:varchar(32)"`
	Account       *string     `bun:"account,type:varchar(42)"`
	Payload       *sale.Event `bun:"payload,notnull,type:jsonb"`
	OccurredAt    time.Time   `bun:"occurred_at,notnull"`
}

func toSaleEventDao(evt *sale.Event) *SaleEventDao {
	dao := &SaleEventDao{
		Seq:        int64(evt.Seq),
		EventID:    evt.ID.String(),
		Kind:       string(evt.Kind),
		Payload:    evt,
		OccurredAt: evt.OccurredAt,
	}
	if evt.Account != (common.Address{}) {
		account := evt.Account.Hex()
		dao.Account = &account
	}
	return dao
}

func toSaleEvent(dao *SaleEventDao) *sale.Event {
	if dao.Payload == nil {
		return &sale.Event{Seq: uint64(dao.Seq), Kind: sale.EventKind(dao.Kind), OccurredAt: dao.OccurredAt}
	}
	evt := *dao.Payload
	evt.Seq = uint64(dao.Seq)
	return &evt
}

// applyConfig copies the sale terms of cfg onto the row.
func (dao *SaleStateDao) applyConfig(cfg sale.Config) error {
	supplyCap, err := toInt64(cfg.SupplyCap)
	if err != nil {
		return fmt.Errorf("supply cap: %w", err)
	}
	perAccountCap, err := toInt64(cfg.PerAccountCap)
	if err != nil {
		return fmt.Errorf("per-account cap: %w", err)
	}
	dao.StartTime = cfg.StartTime.UTC()
	dao.EndTime = cfg.EndTime.UTC()
	dao.SupplyCap = supplyCap
	dao.UnitPrice = cfg.UnitPrice.String()
	dao.PerAccountCap = perAccountCap
	return nil
}

func (dao *SaleStateDao) config() (sale.Config, error) {
	price, err := parseAmount(dao.UnitPrice)
	if err != nil {
		return sale.Config{}, fmt.Errorf("unit price: %w", err)
	}
	return sale.Config{
		StartTime:     dao.StartTime.UTC(),
		EndTime:       dao.EndTime.UTC(),
		SupplyCap:     uint64(dao.SupplyCap),
		UnitPrice:     price,
		PerAccountCap: uint64(dao.PerAccountCap),
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// toInt64 rejects counters that do not fit a signed bigint column.
func toInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("value %d exceeds bigint range", v)
	}
	return int64(v), nil
}
