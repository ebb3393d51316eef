// Package ledger provides an in-memory asset ledger with the token semantics the
// sale controller relies on: minter-role gated issuance, recipient allow-listing,
// unique token ids and ownership queries.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrMissingMinterRole = errors.New("operator is missing the minter role")
	ErrTokenExists       = errors.New("token already minted")
	ErrTokenNotFound     = errors.New("token does not exist")
	ErrNotAllowlisted    = errors.New("recipient is not allowlisted")
	ErrZeroRecipient     = errors.New("mint to the zero address")
)

// Allowlist is the consent oracle consulted before minting to a recipient.
type Allowlist interface {
	IsAllowlisted(ctx context.Context, account common.Address) (bool, error)
}

// StaticAllowlist allows a fixed set of accounts.
type StaticAllowlist map[common.Address]bool

func (a StaticAllowlist) IsAllowlisted(_ context.Context, account common.Address) (bool, error) {
	return a[account], nil
}

// Memory is a process-local ledger. The operator is the account issuing units;
// it must hold the minter role for Issue to succeed.
type Memory struct {
	mu        sync.RWMutex
	operator  common.Address
	minters   map[common.Address]bool
	allowlist Allowlist
	owners    map[string]common.Address
	balances  map[common.Address]int64
}

// Option configures a Memory ledger.
type Option func(*Memory)

// WithAllowlist makes Issue consult a for every recipient.
func WithAllowlist(a Allowlist) Option {
	return func(m *Memory) {
		m.allowlist = a
	}
}

// WithMinter grants the minter role to operator at construction.
func WithMinter() Option {
	return func(m *Memory) {
		m.minters[m.operator] = true
	}
}

// NewMemory creates an empty ledger operated by operator.
func NewMemory(operator common.Address, opts ...Option) *Memory {
	m := &Memory{
		operator: operator,
		minters:  make(map[common.Address]bool),
		owners:   make(map[string]common.Address),
		balances: make(map[common.Address]int64),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GrantMinter gives account the minter role.
func (m *Memory) GrantMinter(account common.Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.minters[account] = true
}

// RevokeMinter removes the minter role from account.
func (m *Memory) RevokeMinter(account common.Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.minters, account)
}

// IsMinter reports whether the operator may issue units.
func (m *Memory) IsMinter(_ context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.minters[m.operator], nil
}

// Issue mints tokenID to recipient.
func (m *Memory) Issue(ctx context.Context, recipient common.Address, tokenID *big.Int) error {
	if tokenID == nil || tokenID.Sign() < 0 {
		return fmt.Errorf("invalid token id %v", tokenID)
	}
	if recipient == (common.Address{}) {
		return ErrZeroRecipient
	}
	if m.allowlist != nil {
		ok, err := m.allowlist.IsAllowlisted(ctx, recipient)
		if err != nil {
			return fmt.Errorf("allowlist check: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotAllowlisted, recipient.Hex())
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.minters[m.operator] {
		return ErrMissingMinterRole
	}
	key := tokenID.String()
	if _, exists := m.owners[key]; exists {
		return fmt.Errorf("%w: %s", ErrTokenExists, key)
	}
	m.owners[key] = recipient
	m.balances[recipient]++
	return nil
}

// BalanceOf returns the number of tokens held by account.
func (m *Memory) BalanceOf(_ context.Context, account common.Address) (*big.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return big.NewInt(m.balances[account]), nil
}

// OwnerOf returns the owner of tokenID.
func (m *Memory) OwnerOf(_ context.Context, tokenID *big.Int) (common.Address, error) {
	if tokenID == nil {
		return common.Address{}, ErrTokenNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	owner, ok := m.owners[tokenID.String()]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s", ErrTokenNotFound, tokenID.String())
	}
	return owner, nil
}

// TotalSupply returns the number of minted tokens.
func (m *Memory) TotalSupply(_ context.Context) (*big.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return big.NewInt(int64(len(m.owners))), nil
}
