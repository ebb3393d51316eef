package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/chainsafe/primary-sale-minter/pkg/sale"
)

// RoleRequest grants or revokes a role.
type RoleRequest struct {
	Role    string `json:"role" validate:"required"`
	Account string `json:"account" validate:"required,eth_addr"`
}

// RoleResponse answers a role membership query.
type RoleResponse struct {
	Role    string `json:"role"`
	RoleID  string `json:"role_id"`
	Account string `json:"account"`
	HasRole bool   `json:"has_role"`
}

// BlacklistRequest sets the blacklist flag of an account.
type BlacklistRequest struct {
	Account     string `json:"account" validate:"required,eth_addr"`
	Blacklisted bool   `json:"blacklisted"`
}

// BlacklistResponse reports the blacklist flag of an account.
type BlacklistResponse struct {
	Account     string `json:"account"`
	Blacklisted bool   `json:"blacklisted"`
}

// ConfigRequest installs new sale terms. Amounts are decimal strings.
type ConfigRequest struct {
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	SupplyCap     uint64    `json:"supply_cap"`
	UnitPrice     string    `json:"unit_price" validate:"required,numeric"`
	PerAccountCap uint64    `json:"per_account_cap"`
}

// ConfigResponse reports the active sale terms.
type ConfigResponse struct {
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	SupplyCap     uint64    `json:"supply_cap"`
	UnitPrice     string    `json:"unit_price"`
	PerAccountCap uint64    `json:"per_account_cap"`
	Active        bool      `json:"active"`
}

func toConfigResponse(cfg sale.Config, now time.Time) *ConfigResponse {
	return &ConfigResponse{
		StartTime:     cfg.StartTime,
		EndTime:       cfg.EndTime,
		SupplyCap:     cfg.SupplyCap,
		UnitPrice:     cfg.UnitPrice.String(),
		PerAccountCap: cfg.PerAccountCap,
		Active:        cfg.Active(now),
	}
}

// MintRequest asks for one unit. TokenID is a base-10 integer and Payment a
// decimal amount in native units. PaymentTx is the hash of the transfer that
// paid for the unit; servers that verify payments require it and admit the
// amount it carries.
type MintRequest struct {
	TokenID   string `json:"token_id" validate:"required,number"`
	Payment   string `json:"payment" validate:"required,numeric"`
	PaymentTx string `json:"payment_tx,omitempty" validate:"omitempty,hexadecimal,len=66"`
}

// MintResponse describes a successful admission.
type MintResponse struct {
	Account         string `json:"account"`
	TokenID         string `json:"token_id"`
	Payment         string `json:"payment"`
	AccountAdmitted uint64 `json:"account_admitted"`
	TotalAdmitted   uint64 `json:"total_admitted"`
	EventSeq        uint64 `json:"event_seq"`
	// PendingTx is set when the issuance was submitted but not yet confirmed.
	PendingTx string `json:"pending_tx,omitempty"`
}

// CountsResponse reports global sale progress.
type CountsResponse struct {
	TotalAdmitted uint64 `json:"total_admitted"`
	SupplyCap     uint64 `json:"supply_cap"`
	Remaining     uint64 `json:"remaining"`
}

// AccountResponse reports the sale standing of one account.
type AccountResponse struct {
	Account       string `json:"account"`
	Admitted      uint64 `json:"admitted"`
	PerAccountCap uint64 `json:"per_account_cap"`
	Blacklisted   bool   `json:"blacklisted"`
}

// TreasuryResponse reports the treasury balance.
type TreasuryResponse struct {
	Balance string `json:"balance"`
}

// WithdrawResponse describes a completed withdrawal.
type WithdrawResponse struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// EventsResponse is one page of the notification log.
type EventsResponse struct {
	Events []*sale.Event `json:"events"`
	// Next is the cursor to pass as "after" for the following page.
	Next uint64 `json:"next"`
}

// LedgerBalanceResponse reports how many units an account holds.
type LedgerBalanceResponse struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
}

// LedgerOwnerResponse reports the holder of a unit.
type LedgerOwnerResponse struct {
	TokenID string `json:"token_id"`
	Owner   string `json:"owner"`
}

func remaining(capacity, used uint64) uint64 {
	if used >= capacity {
		return 0
	}
	return capacity - used
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, sale.ErrNegativeAmount
	}
	return d, nil
}
