package ledger

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/primary-sale-minter/internal/metrics"
)

// Ledger is the read and issue surface shared by every ledger implementation.
type Ledger interface {
	Issue(ctx context.Context, recipient common.Address, tokenID *big.Int) error
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
	OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error)
}

// Instrumented records issuance latency of the wrapped ledger.
type Instrumented struct {
	Ledger
}

// Instrument wraps l with issuance metrics.
func Instrument(l Ledger) *Instrumented {
	return &Instrumented{Ledger: l}
}

func (i *Instrumented) Issue(ctx context.Context, recipient common.Address, tokenID *big.Int) error {
	start := time.Now()
	err := i.Ledger.Issue(ctx, recipient, tokenID)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.LedgerIssueDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	return err
}
