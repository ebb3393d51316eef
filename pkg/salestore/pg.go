package salestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/chainsafe/primary-sale-minter/pkg/sale"
)

// ErrNotInitialized is returned when a save targets a store that was never initialized.
var ErrNotInitialized = errors.New("sale state not initialized")

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the sale store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) LoadState(ctx context.Context) (*sale.State, error) {
	state := sale.NewState()

	row := new(SaleStateDao)
	err := s.db.NewSelect().Model(row).Where("id = ?", stateRowID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return state, nil
		}
		return nil, fmt.Errorf("failed to load sale state: %w", err)
	}

	cfg, err := row.config()
	if err != nil {
		return nil, fmt.Errorf("failed to decode sale config: %w", err)
	}
	treasury, err := parseAmount(row.TreasuryBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to decode treasury balance: %w", err)
	}
	state.Initialized = true
	state.Administrator = common.HexToAddress(row.Administrator)
	state.Config = cfg
	state.TotalAdmitted = uint64(row.TotalAdmitted)
	state.TreasuryBalance = treasury
	state.LastEventSeq = uint64(row.LastEventSeq)

	var members []RoleMemberDao
	if err := s.db.NewSelect().Model(&members).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to load role members: %w", err)
	}
	for i := range members {
		role := sale.Role(members[i].Role)
		if state.Roles[role] == nil {
			state.Roles[role] = make(map[common.Address]bool)
		}
		state.Roles[role][common.HexToAddress(members[i].Account)] = true
	}

	var blacklist []BlacklistDao
	if err := s.db.NewSelect().Model(&blacklist).Where("blacklisted").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to load blacklist: %w", err)
	}
	for i := range blacklist {
		state.Blacklist[common.HexToAddress(blacklist[i].Account)] = true
	}

	var admissions []AccountAdmissionDao
	if err := s.db.NewSelect().Model(&admissions).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to load account admissions: %w", err)
	}
	for i := range admissions {
		state.AccountAdmitted[common.HexToAddress(admissions[i].Account)] = uint64(admissions[i].Admitted)
	}

	return state, nil
}

func (s *pgStore) Initialize(ctx context.Context, admin common.Address) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := &SaleStateDao{
			ID:              stateRowID,
			Administrator:   admin.Hex(),
			UnitPrice:       decimal.Zero.String(),
			TreasuryBalance: decimal.Zero.String(),
		}
		res, err := tx.NewInsert().
			Model(row).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert sale state: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrAlreadyInitialized
		}

		_, err = tx.NewInsert().
			Model(&RoleMemberDao{Role: string(sale.Administrator), Account: admin.Hex()}).
			On("CONFLICT (role, account) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to grant bootstrap administrator: %w", err)
		}
		return nil
	})
}

func (s *pgStore) SaveRole(ctx context.Context, role sale.Role, account common.Address, granted bool) error {
	if granted {
		_, err := s.db.NewInsert().
			Model(&RoleMemberDao{Role: string(role), Account: account.Hex()}).
			On("CONFLICT (role, account) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to grant %s: %w", role, err)
		}
		return nil
	}

	_, err := s.db.NewDelete().
		Model((*RoleMemberDao)(nil)).
		Where("role = ?", string(role)).
		Where("account = ?", account.Hex()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to revoke %s: %w", role, err)
	}
	return nil
}

func (s *pgStore) SaveBlacklist(ctx context.Context, evt *sale.Event) error {
	if evt == nil {
		return ErrEventOutOfOrder
	}
	flag := evt.Blacklisted != nil && *evt.Blacklisted

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := advanceSeq(ctx, tx, evt.Seq, nil); err != nil {
			return err
		}
		_, err := tx.NewInsert().
			Model(&BlacklistDao{Account: evt.Account.Hex(), Blacklisted: flag, UpdatedAt: evt.OccurredAt}).
			On("CONFLICT (account) DO UPDATE").
			Set("blacklisted = EXCLUDED.blacklisted").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to upsert blacklist entry: %w", err)
		}
		return insertEvent(ctx, tx, evt)
	})
}

func (s *pgStore) SaveConfig(ctx context.Context, evt *sale.Event) error {
	if evt == nil || evt.Config == nil {
		return ErrEventOutOfOrder
	}
	row := new(SaleStateDao)
	if err := row.applyConfig(*evt.Config); err != nil {
		return err
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := advanceSeq(ctx, tx, evt.Seq, func(q *bun.UpdateQuery) *bun.UpdateQuery {
			return q.
				Set("start_time = ?", row.StartTime).
				Set("end_time = ?", row.EndTime).
				Set("supply_cap = ?", row.SupplyCap).
				Set("unit_price = ?", row.UnitPrice).
				Set("per_account_cap = ?", row.PerAccountCap)
		})
		if err != nil {
			return err
		}
		return insertEvent(ctx, tx, evt)
	})
}

func (s *pgStore) SaveAdmission(ctx context.Context, adm *sale.Admission) error {
	if adm == nil || adm.Event == nil {
		return ErrEventOutOfOrder
	}
	total, err := toInt64(adm.TotalAdmitted)
	if err != nil {
		return fmt.Errorf("total admitted: %w", err)
	}
	accountAdmitted, err := toInt64(adm.AccountAdmitted)
	if err != nil {
		return fmt.Errorf("account admitted: %w", err)
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := advanceSeq(ctx, tx, adm.Event.Seq, func(q *bun.UpdateQuery) *bun.UpdateQuery {
			return q.
				Set("total_admitted = ?", total).
				Set("treasury_balance = ?", adm.TreasuryBalance.String())
		})
		if err != nil {
			return err
		}

		_, err = tx.NewInsert().
			Model(&AccountAdmissionDao{Account: adm.Account.Hex(), Admitted: accountAdmitted, UpdatedAt: adm.Event.OccurredAt}).
			On("CONFLICT (account) DO UPDATE").
			Set("admitted = EXCLUDED.admitted").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to upsert account admissions: %w", err)
		}
		return insertEvent(ctx, tx, adm.Event)
	})
}

func (s *pgStore) SaveTreasury(ctx context.Context, balance decimal.Decimal) error {
	res, err := s.db.NewUpdate().
		Model((*SaleStateDao)(nil)).
		Set("treasury_balance = ?", balance.String()).
		Set("updated_at = NOW()").
		Where("id = ?", stateRowID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update treasury balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotInitialized
	}
	return nil
}

func (s *pgStore) ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]*sale.Event, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	after, err := toInt64(afterSeq)
	if err != nil {
		return nil, err
	}

	var daos []SaleEventDao
	err = s.db.NewSelect().
		Model(&daos).
		Where("seq > ?", after).
		Order("seq ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sale events: %w", err)
	}

	events := make([]*sale.Event, len(daos))
	for i := range daos {
		events[i] = toSaleEvent(&daos[i])
	}
	return events, nil
}

// advanceSeq moves last_event_seq from seq-1 to seq, applying any extra
// column updates in the same statement. A stale or skipped seq matches no row.
func advanceSeq(ctx context.Context, tx bun.Tx, seq uint64, extra func(*bun.UpdateQuery) *bun.UpdateQuery) error {
	if seq == 0 {
		return ErrEventOutOfOrder
	}
	next, err := toInt64(seq)
	if err != nil {
		return err
	}

	q := tx.NewUpdate().
		Model((*SaleStateDao)(nil)).
		Set("last_event_seq = ?", next).
		Set("updated_at = NOW()").
		Where("id = ?", stateRowID).
		Where("last_event_seq = ?", next-1)
	if extra != nil {
		q = extra(q)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update sale state: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventOutOfOrder
	}
	return nil
}

func insertEvent(ctx context.Context, tx bun.Tx, evt *sale.Event) error {
	_, err := tx.NewInsert().Model(toSaleEventDao(evt)).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert %s event: %w", evt.Kind, err)
	}
	return nil
}
