package controller

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/primary-sale-minter/pkg/sale"
)

// SetBlacklisted sets the blacklist flag of account. The caller must be a Seller.
// Every successful call emits an UpdateBlacklist notification, whether or not the
// flag changed.
func (c *Controller) SetBlacklisted(ctx context.Context, caller, account common.Address, flag bool) (*sale.Event, error) {
	unlock, err := c.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := c.requireRole(sale.Seller, caller); err != nil {
		return nil, err
	}

	evt := sale.NewBlacklistEvent(c.state.LastEventSeq+1, account, flag, c.clock())
	if err := c.store.SaveBlacklist(ctx, evt); err != nil {
		return nil, fmt.Errorf("save blacklist: %w", err)
	}

	if flag {
		c.state.Blacklist[account] = true
	} else {
		delete(c.state.Blacklist, account)
	}
	c.state.LastEventSeq = evt.Seq

	c.publish(ctx, evt)
	return evt, nil
}

// IsBlacklisted reports whether account is on the blacklist.
func (c *Controller) IsBlacklisted(account common.Address) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state.Blacklist[account]
}
