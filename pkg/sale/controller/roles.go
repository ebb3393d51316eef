package controller

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/primary-sale-minter/pkg/sale"
)

// Grant gives role to account. The caller must be an Administrator.
// Granting a role the account already holds succeeds.
func (c *Controller) Grant(ctx context.Context, caller common.Address, role sale.Role, account common.Address) error {
	return c.setRole(ctx, caller, role, account, true)
}

// Revoke removes role from account. The caller must be an Administrator.
// Revoking the last administrator is not prevented.
func (c *Controller) Revoke(ctx context.Context, caller common.Address, role sale.Role, account common.Address) error {
	return c.setRole(ctx, caller, role, account, false)
}

func (c *Controller) setRole(ctx context.Context, caller common.Address, role sale.Role, account common.Address, granted bool) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}

	unlock, err := c.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := c.requireRole(sale.Administrator, caller); err != nil {
		return err
	}
	if err := c.store.SaveRole(ctx, role, account, granted); err != nil {
		return fmt.Errorf("save role: %w", err)
	}

	if granted {
		c.state.Roles[role][account] = true
	} else {
		delete(c.state.Roles[role], account)
	}
	return nil
}

// HasRole reports whether account holds role.
func (c *Controller) HasRole(role sale.Role, account common.Address) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state.Roles[role][account]
}
