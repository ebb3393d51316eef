package controller

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainsafe/primary-sale-minter/pkg/sale"
)

// Balance returns the accumulated treasury balance.
func (c *Controller) Balance() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state.TreasuryBalance
}

// Withdraw pays the whole treasury balance to caller and zeroes it.
// The caller must be an Administrator. An empty treasury yields
// sale.ErrNothingToWithdraw. A transfer that was submitted but not confirmed
// is treated as paid.
func (c *Controller) Withdraw(ctx context.Context, caller common.Address) (decimal.Decimal, error) {
	unlock, err := c.lock(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer unlock()

	if err := c.requireRole(sale.Administrator, caller); err != nil {
		return decimal.Zero, err
	}

	amount := c.state.TreasuryBalance
	if !amount.IsPositive() {
		return decimal.Zero, sale.ErrNothingToWithdraw
	}

	if err := c.payout.Pay(ctx, caller, amount); err != nil {
		hash, unconfirmed := sale.PendingTx(err)
		if !unconfirmed {
			return decimal.Zero, fmt.Errorf("treasury payout: %w", err)
		}
		c.logger.Error("Treasury payout submitted but not confirmed; zeroing the balance",
			zap.String("to", caller.Hex()),
			zap.String("amount", amount.String()),
			zap.String("tx_hash", hash),
			zap.Error(err),
		)
	}

	persistErr := c.store.SaveTreasury(ctx, decimal.Zero)
	c.state.TreasuryBalance = decimal.Zero

	if persistErr != nil {
		c.logger.Error("Paid out treasury but failed to persist zero balance",
			zap.String("to", caller.Hex()),
			zap.String("amount", amount.String()),
			zap.Error(persistErr),
		)
		c.markUnsynced("treasury withdrawal", func(ctx context.Context) error {
			return c.store.SaveTreasury(ctx, decimal.Zero)
		}, nil)
		return amount, fmt.Errorf("persist treasury: %w", persistErr)
	}
	return amount, nil
}
