package controller

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainsafe/primary-sale-minter/pkg/sale"
)

// admissionKey marks a context handed to the ledger while an admission holds the lock.
type admissionKey struct{}

// Admit runs the admission pipeline for caller asking for tokenID with the
// attached payment, evaluated at now.
//
// The checks run in a fixed order and the first failure is returned as a
// *sale.DeniedError with no state change:
//  1. caller is blacklisted
//  2. now is outside [StartTime, EndTime]
//  3. payment is below the unit price
//  4. the caller's cumulative admissions would exceed PerAccountCap
//  5. the cumulative admissions would exceed SupplyCap
//
// A negative payment is refused with sale.ErrNegativeAmount before any check.
//
// The unit is then issued on the ledger. A ledger failure is returned as a
// *sale.LedgerRejectedError and nothing else happens. On success both counters
// are incremented, the full payment is added to the treasury and a MintToken
// notification is emitted. An issuance that was submitted but not confirmed is
// counted the same way and the admission carries its PendingTx.
//
// If the store rejects the admission after the unit was issued, the counters
// still advance and the write is kept for replay; later mutations return
// sale.ErrStoreOutOfSync until the store accepts it.
func (c *Controller) Admit(
	ctx context.Context,
	caller common.Address,
	tokenID *big.Int,
	payment decimal.Decimal,
	now time.Time,
) (*sale.Admission, error) {
	if tokenID == nil {
		return nil, errors.New("token id is required")
	}
	if payment.IsNegative() {
		return nil, sale.ErrNegativeAmount
	}

	unlock, err := c.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := c.checkAdmission(caller, payment, now); err != nil {
		return nil, err
	}

	var pendingTx string
	issueCtx := context.WithValue(ctx, admissionKey{}, caller)
	if err := c.ledger.Issue(issueCtx, caller, tokenID); err != nil {
		hash, unconfirmed := sale.PendingTx(err)
		if !unconfirmed {
			return nil, &sale.LedgerRejectedError{Err: err}
		}
		c.logger.Error("Issuance submitted but not confirmed; counting the admission",
			zap.String("account", caller.Hex()),
			zap.String("token_id", tokenID.String()),
			zap.String("tx_hash", hash),
			zap.Error(err),
		)
		pendingTx = hash
	}

	adm := &sale.Admission{
		Account:         caller,
		TokenID:         new(big.Int).Set(tokenID),
		Payment:         payment,
		AccountAdmitted: c.state.AccountAdmitted[caller] + 1,
		TotalAdmitted:   c.state.TotalAdmitted + 1,
		TreasuryBalance: c.state.TreasuryBalance.Add(payment),
		Event:           sale.NewAdmissionEvent(c.state.LastEventSeq+1, caller, tokenID, payment, now),
		PendingTx:       pendingTx,
	}

	// The unit exists on the ledger at this point, so the counters must reflect
	// it even if persisting them fails.
	persistErr := c.store.SaveAdmission(ctx, adm)

	c.state.AccountAdmitted[caller] = adm.AccountAdmitted
	c.state.TotalAdmitted = adm.TotalAdmitted
	c.state.TreasuryBalance = adm.TreasuryBalance
	c.state.LastEventSeq = adm.Event.Seq

	if persistErr != nil {
		c.logger.Error("Issued unit but failed to persist admission",
			zap.String("account", caller.Hex()),
			zap.String("token_id", tokenID.String()),
			zap.Error(persistErr),
		)
		c.markUnsynced("admission "+tokenID.String(), func(ctx context.Context) error {
			return c.store.SaveAdmission(ctx, adm)
		}, adm.Event)
		return adm, fmt.Errorf("persist admission: %w", persistErr)
	}

	c.publish(ctx, adm.Event)
	return adm, nil
}

func (c *Controller) checkAdmission(caller common.Address, payment decimal.Decimal, now time.Time) error {
	cfg := c.state.Config

	if c.state.Blacklist[caller] {
		return sale.Denied(sale.Blacklisted)
	}
	if !cfg.Active(now) {
		return sale.Denied(sale.NoActiveSale)
	}
	if payment.LessThan(cfg.UnitPrice) {
		return sale.Denied(sale.InsufficientPayment)
	}
	if c.state.AccountAdmitted[caller] >= cfg.PerAccountCap {
		return sale.Denied(sale.AccountQuotaExceeded)
	}
	if c.state.TotalAdmitted >= cfg.SupplyCap {
		return sale.Denied(sale.GlobalSupplyExceeded)
	}
	return nil
}

// TotalAdmitted returns the number of units admitted over the controller's lifetime.
func (c *Controller) TotalAdmitted() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state.TotalAdmitted
}

// AccountAdmitted returns the number of units admitted to account over the
// controller's lifetime.
func (c *Controller) AccountAdmitted(account common.Address) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state.AccountAdmitted[account]
}
