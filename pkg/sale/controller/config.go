package controller

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/primary-sale-minter/pkg/sale"
)

// Configure replaces the active sale configuration. The caller must be a Seller.
// A negative unit price is refused with sale.ErrNegativeAmount. Otherwise the
// terms are stored as given; an inverted window simply never admits anyone.
// Quota counters are left untouched.
func (c *Controller) Configure(ctx context.Context, caller common.Address, cfg sale.Config) (*sale.Event, error) {
	if cfg.UnitPrice.IsNegative() {
		return nil, sale.ErrNegativeAmount
	}

	unlock, err := c.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := c.requireRole(sale.Seller, caller); err != nil {
		return nil, err
	}

	evt := sale.NewConfigEvent(c.state.LastEventSeq+1, cfg, c.clock())
	if err := c.store.SaveConfig(ctx, evt); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}

	c.state.Config = cfg
	c.state.LastEventSeq = evt.Seq

	c.publish(ctx, evt)
	return evt, nil
}

// CurrentConfig returns the active sale configuration.
func (c *Controller) CurrentConfig() sale.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state.Config
}
