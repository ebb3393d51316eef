package ledger

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	operator = common.HexToAddress("0x0000000000000000000000000000000000000f01")
	alice    = common.HexToAddress("0x0000000000000000000000000000000000000a11")
	bob      = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func TestMemory_DeployedWithoutMinterRole(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(operator)

	ok, err := l.IsMinter(ctx)
	if err != nil {
		t.Fatalf("IsMinter() error = %v", err)
	}
	if ok {
		t.Fatal("expected operator to start without the minter role")
	}

	err = l.Issue(ctx, alice, big.NewInt(1))
	if !errors.Is(err, ErrMissingMinterRole) {
		t.Fatalf("expected ErrMissingMinterRole, got %v", err)
	}

	l.GrantMinter(operator)
	if err := l.Issue(ctx, alice, big.NewInt(1)); err != nil {
		t.Fatalf("Issue() after grant error = %v", err)
	}

	l.RevokeMinter(operator)
	if err := l.Issue(ctx, alice, big.NewInt(2)); !errors.Is(err, ErrMissingMinterRole) {
		t.Fatalf("expected ErrMissingMinterRole after revoke, got %v", err)
	}
}

func TestMemory_IssueAndQueries(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(operator, WithMinter())

	for i := int64(1); i <= 3; i++ {
		if err := l.Issue(ctx, alice, big.NewInt(i)); err != nil {
			t.Fatalf("Issue(%d) error = %v", i, err)
		}
	}

	bal, err := l.BalanceOf(ctx, alice)
	if err != nil {
		t.Fatalf("BalanceOf() error = %v", err)
	}
	if bal.Int64() != 3 {
		t.Fatalf("expected balance 3, got %s", bal)
	}

	owner, err := l.OwnerOf(ctx, big.NewInt(2))
	if err != nil {
		t.Fatalf("OwnerOf() error = %v", err)
	}
	if owner != alice {
		t.Fatalf("expected owner %s, got %s", alice.Hex(), owner.Hex())
	}

	supply, _ := l.TotalSupply(ctx)
	if supply.Int64() != 3 {
		t.Fatalf("expected total supply 3, got %s", supply)
	}

	if _, err := l.OwnerOf(ctx, big.NewInt(99)); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestMemory_RejectsDuplicateToken(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(operator, WithMinter())

	if err := l.Issue(ctx, alice, big.NewInt(1)); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	err := l.Issue(ctx, bob, big.NewInt(1))
	if !errors.Is(err, ErrTokenExists) {
		t.Fatalf("expected ErrTokenExists, got %v", err)
	}

	bal, _ := l.BalanceOf(ctx, bob)
	if bal.Sign() != 0 {
		t.Fatalf("expected bob balance 0, got %s", bal)
	}
}

func TestMemory_Allowlist(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(operator, WithMinter(), WithAllowlist(StaticAllowlist{alice: true}))

	if err := l.Issue(ctx, alice, big.NewInt(1)); err != nil {
		t.Fatalf("Issue() to allowlisted recipient error = %v", err)
	}
	if err := l.Issue(ctx, bob, big.NewInt(2)); !errors.Is(err, ErrNotAllowlisted) {
		t.Fatalf("expected ErrNotAllowlisted, got %v", err)
	}
	if err := l.Issue(ctx, common.Address{}, big.NewInt(3)); !errors.Is(err, ErrZeroRecipient) {
		t.Fatalf("expected ErrZeroRecipient, got %v", err)
	}
}

func TestInstrument_DelegatesToLedger(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(operator, WithMinter())
	l := Instrument(mem)

	if err := l.Issue(ctx, alice, big.NewInt(7)); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if err := l.Issue(ctx, alice, big.NewInt(7)); !errors.Is(err, ErrTokenExists) {
		t.Fatalf("expected ErrTokenExists through the wrapper, got %v", err)
	}

	owner, err := l.OwnerOf(ctx, big.NewInt(7))
	if err != nil || owner != alice {
		t.Fatalf("OwnerOf() = %s, %v", owner.Hex(), err)
	}
}
