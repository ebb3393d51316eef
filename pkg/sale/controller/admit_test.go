package controller

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/primary-sale-minter/pkg/ledger"
	"github.com/chainsafe/primary-sale-minter/pkg/sale"
	"github.com/chainsafe/primary-sale-minter/pkg/sale/controller/mocks"
	"github.com/chainsafe/primary-sale-minter/pkg/salestore"
)

func TestAdmit_EndToEndScenario(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t, openSale(1000, 5, "0.2"))

	adm, err := env.admit(buyer, 1, "0.21")
	require.NoError(t, err)

	assert.Equal(t, uint64(1), env.ctrl.TotalAdmitted())
	assert.Equal(t, uint64(1), env.ctrl.AccountAdmitted(buyer))
	assert.True(t, env.ctrl.Balance().Equal(decimal.RequireFromString("0.21")))
	assert.Equal(t, uint64(1), adm.TotalAdmitted)
	assert.Equal(t, sale.EventAdmissionSucceeded, adm.Event.Kind)
	assert.Equal(t, buyer, adm.Event.Account)
	assert.Equal(t, int64(1), adm.Event.TokenID.Int64())

	owner, err := env.ledger.OwnerOf(context.Background(), big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, buyer, owner)

	assert.Equal(t, []sale.EventKind{sale.EventConfigChanged, sale.EventAdmissionSucceeded}, env.publisher.kinds())
}

func TestAdmit_BlacklistedAlwaysDenied(t *testing.T) {
	tests := []struct {
		name    string
		cfg     sale.Config
		payment string
	}{
		{name: "open sale", cfg: openSale(10, 5, "0.2"), payment: "0.2"},
		{name: "no sale", cfg: sale.Config{}, payment: "0.2"},
		{name: "underpaid", cfg: openSale(10, 5, "0.2"), payment: "0.01"},
		{name: "no quota", cfg: openSale(0, 0, "0.2"), payment: "0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.configure(t, tt.cfg)
			_, err := env.ctrl.SetBlacklisted(context.Background(), seller, buyer, true)
			require.NoError(t, err)

			_, err = env.admit(buyer, 1, tt.payment)
			assert.True(t, sale.IsDenied(err, sale.Blacklisted), "got %v", err)
			assert.Equal(t, uint64(0), env.ctrl.TotalAdmitted())
		})
	}
}

func TestAdmit_InclusiveWindow(t *testing.T) {
	start := fixedNow
	end := fixedNow.Add(time.Hour)

	tests := []struct {
		name   string
		at     time.Time
		denied bool
	}{
		{name: "before start", at: start.Add(-time.Second), denied: true},
		{name: "at start", at: start},
		{name: "at end", at: end},
		{name: "after end", at: end.Add(time.Second), denied: true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.configure(t, sale.Config{
				StartTime:     start,
				EndTime:       end,
				SupplyCap:     10,
				UnitPrice:     decimal.RequireFromString("0.2"),
				PerAccountCap: 5,
			})

			_, err := env.ctrl.Admit(context.Background(), buyer, big.NewInt(int64(i+1)), decimal.RequireFromString("0.2"), tt.at)
			if tt.denied {
				assert.True(t, sale.IsDenied(err, sale.NoActiveSale), "got %v", err)
				assert.Equal(t, uint64(0), env.ctrl.TotalAdmitted())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint64(1), env.ctrl.TotalAdmitted())
		})
	}
}

func TestAdmit_Payment(t *testing.T) {
	tests := []struct {
		name    string
		payment string
		denied  bool
	}{
		{name: "below price", payment: "0.1", denied: true},
		{name: "negative", payment: "-1", denied: true},
		{name: "exact price", payment: "0.2"},
		{name: "overpayment retained", payment: "0.75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.configure(t, openSale(10, 5, "0.2"))

			_, err := env.admit(buyer, 1, tt.payment)
			if tt.denied {
				assert.True(t, sale.IsDenied(err, sale.InsufficientPayment), "got %v", err)
				assert.True(t, env.ctrl.Balance().IsZero())
				return
			}
			require.NoError(t, err)
			assert.True(t, env.ctrl.Balance().Equal(decimal.RequireFromString(tt.payment)))
		})
	}
}

func TestAdmit_AccountQuotaSurvivesReconfiguration(t *testing.T) {
	env := newTestEnv(t)
	cfg := openSale(1000, 5, "0.2")
	env.configure(t, cfg)

	for i := int64(1); i <= 5; i++ {
		_, err := env.admit(buyer, i, "0.21")
		require.NoError(t, err)
	}

	_, err := env.admit(buyer, 6, "0.21")
	assert.True(t, sale.IsDenied(err, sale.AccountQuotaExceeded), "got %v", err)

	// installing the same terms again does not reset the counters
	env.configure(t, cfg)
	_, err = env.admit(buyer, 6, "0.21")
	assert.True(t, sale.IsDenied(err, sale.AccountQuotaExceeded), "got %v", err)

	_, err = env.admit(other, 6, "0.21")
	require.NoError(t, err)

	assert.Equal(t, uint64(5), env.ctrl.AccountAdmitted(buyer))
	assert.Equal(t, uint64(1), env.ctrl.AccountAdmitted(other))
	assert.Equal(t, uint64(6), env.ctrl.TotalAdmitted())
}

func TestAdmit_GlobalSupplyCap(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t, openSale(10, 5, "0.2"))

	id := int64(0)
	for _, account := range []common.Address{buyer, other} {
		for i := 0; i < 5; i++ {
			id++
			_, err := env.admit(account, id, "0.21")
			require.NoError(t, err)
		}
	}

	// a fresh account still has account quota but the supply is gone
	third := common.HexToAddress("0x00000000000000000000000000000000000000a4")
	for _, account := range []common.Address{buyer, other, third} {
		_, err := env.admit(account, id+1, "0.21")
		assert.True(t, sale.IsDenied(err, sale.GlobalSupplyExceeded) || sale.IsDenied(err, sale.AccountQuotaExceeded), "got %v", err)
	}
	_, err := env.admit(third, id+1, "0.21")
	assert.True(t, sale.IsDenied(err, sale.GlobalSupplyExceeded), "got %v", err)
	assert.Equal(t, uint64(10), env.ctrl.TotalAdmitted())
}

func TestAdmit_CheckOrder(t *testing.T) {
	env := newTestEnv(t)
	// every precondition fails at once: the first check wins
	env.configure(t, sale.Config{UnitPrice: decimal.RequireFromString("1")})

	_, err := env.admit(buyer, 1, "0")
	assert.True(t, sale.IsDenied(err, sale.NoActiveSale), "got %v", err)

	env.configure(t, sale.Config{
		StartTime: fixedNow,
		EndTime:   fixedNow,
		UnitPrice: decimal.RequireFromString("1"),
	})
	_, err = env.admit(buyer, 1, "0")
	assert.True(t, sale.IsDenied(err, sale.InsufficientPayment), "got %v", err)

	_, err = env.admit(buyer, 1, "1")
	assert.True(t, sale.IsDenied(err, sale.AccountQuotaExceeded), "got %v", err)

	env.configure(t, sale.Config{
		StartTime:     fixedNow,
		EndTime:       fixedNow,
		UnitPrice:     decimal.RequireFromString("1"),
		PerAccountCap: 1,
	})
	_, err = env.admit(buyer, 1, "1")
	assert.True(t, sale.IsDenied(err, sale.GlobalSupplyExceeded), "got %v", err)

	reason, ok := sale.DenialOf(err)
	require.True(t, ok)
	assert.Equal(t, "0x5", reason.Code())
}

func TestAdmit_LedgerRejectionPropagates(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t, openSale(10, 5, "0.2"))

	_, err := env.admit(buyer, 1, "0.2")
	require.NoError(t, err)

	// same id again: the ledger refuses, the controller must not count it
	_, err = env.admit(other, 1, "0.2")
	var rejected *sale.LedgerRejectedError
	require.True(t, errors.As(err, &rejected), "got %v", err)
	assert.ErrorIs(t, err, ledger.ErrTokenExists)
	assert.Contains(t, rejected.Reason(), "token already minted")

	assert.Equal(t, uint64(1), env.ctrl.TotalAdmitted())
	assert.Equal(t, uint64(0), env.ctrl.AccountAdmitted(other))
	assert.True(t, env.ctrl.Balance().Equal(decimal.RequireFromString("0.2")))
	assert.Len(t, env.publisher.kinds(), 2)
}

func TestAdmit_LedgerWithoutMinterRole(t *testing.T) {
	store := salestore.NewMemoryStore()
	l := ledger.NewMemory(admin)
	ctrl, err := New(context.Background(), store, l, admin)
	require.NoError(t, err)
	require.NoError(t, ctrl.Grant(context.Background(), admin, sale.Seller, seller))
	_, err = ctrl.Configure(context.Background(), seller, openSale(10, 5, "0.2"))
	require.NoError(t, err)

	_, err = ctrl.Admit(context.Background(), buyer, big.NewInt(1), decimal.RequireFromString("0.2"), fixedNow)
	assert.ErrorIs(t, err, ledger.ErrMissingMinterRole)
	assert.Equal(t, uint64(0), ctrl.TotalAdmitted())
}

func TestAdmit_MockLedgerReceivesCallerAndID(t *testing.T) {
	l := mocks.NewLedger(t)
	l.EXPECT().Issue(mock.Anything, buyer, big.NewInt(42)).Return(nil).Once()

	ctrl, err := New(context.Background(), salestore.NewMemoryStore(), l, admin)
	require.NoError(t, err)
	require.NoError(t, ctrl.Grant(context.Background(), admin, sale.Seller, seller))
	_, err = ctrl.Configure(context.Background(), seller, openSale(10, 5, "0.2"))
	require.NoError(t, err)

	_, err = ctrl.Admit(context.Background(), buyer, big.NewInt(42), decimal.RequireFromString("0.2"), fixedNow)
	require.NoError(t, err)
}

func TestAdmit_ReentryIsRejected(t *testing.T) {
	l := mocks.NewLedger(t)

	ctrl, err := New(context.Background(), salestore.NewMemoryStore(), l, admin)
	require.NoError(t, err)
	require.NoError(t, ctrl.Grant(context.Background(), admin, sale.Seller, seller))
	_, err = ctrl.Configure(context.Background(), seller, openSale(10, 1, "0.2"))
	require.NoError(t, err)

	var reentryErr error
	l.EXPECT().Issue(mock.Anything, buyer, mock.Anything).
		RunAndReturn(func(ctx context.Context, recipient common.Address, _ *big.Int) error {
			_, reentryErr = ctrl.Admit(ctx, recipient, big.NewInt(2), decimal.RequireFromString("0.2"), fixedNow)
			return nil
		}).Once()

	_, err = ctrl.Admit(context.Background(), buyer, big.NewInt(1), decimal.RequireFromString("0.2"), fixedNow)
	require.NoError(t, err)
	assert.ErrorIs(t, reentryErr, sale.ErrReentrantAdmission)
	assert.Equal(t, uint64(1), ctrl.AccountAdmitted(buyer))
}

func TestAdmit_PersistFailureAfterIssueStillCounts(t *testing.T) {
	store := mocks.NewStore(t)
	store.EXPECT().LoadState(mock.Anything).Return(sale.NewState(), nil).Once()
	store.EXPECT().Initialize(mock.Anything, admin).Return(nil).Once()
	store.EXPECT().SaveRole(mock.Anything, sale.Seller, seller, true).Return(nil).Once()
	store.EXPECT().SaveConfig(mock.Anything, mock.Anything).Return(nil).Once()
	store.EXPECT().SaveAdmission(mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	// replayed before the next admission runs
	store.EXPECT().SaveAdmission(mock.Anything, mock.Anything).Return(nil).Once()

	ctrl, err := New(context.Background(), store, ledger.NewMemory(admin, ledger.WithMinter()), admin)
	require.NoError(t, err)
	require.NoError(t, ctrl.Grant(context.Background(), admin, sale.Seller, seller))
	_, err = ctrl.Configure(context.Background(), seller, openSale(10, 1, "0.2"))
	require.NoError(t, err)

	adm, err := ctrl.Admit(context.Background(), buyer, big.NewInt(1), decimal.RequireFromString("0.2"), fixedNow)
	require.Error(t, err)
	require.NotNil(t, adm)
	assert.Equal(t, uint64(1), ctrl.AccountAdmitted(buyer))

	// the quota still binds after the failed write
	_, err = ctrl.Admit(context.Background(), buyer, big.NewInt(2), decimal.RequireFromString("0.2"), fixedNow)
	assert.True(t, sale.IsDenied(err, sale.AccountQuotaExceeded), "got %v", err)
}

func TestAdmit_ConcurrentRequestsRespectCaps(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t, openSale(25, 3, "0.2"))

	const accounts = 20
	var (
		wg        sync.WaitGroup
		successes atomic.Int64
		nextID    atomic.Int64
	)
	for a := 0; a < accounts; a++ {
		account := common.HexToAddress(fmt.Sprintf("0x%040x", 0x1000+a))
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id := nextID.Add(1)
				_, err := env.ctrl.Admit(context.Background(), account, big.NewInt(id), decimal.RequireFromString("0.2"), fixedNow)
				if err == nil {
					successes.Add(1)
				}
			}()
		}
	}
	wg.Wait()

	assert.Equal(t, int64(25), successes.Load())
	assert.Equal(t, uint64(25), env.ctrl.TotalAdmitted())
	for a := 0; a < accounts; a++ {
		account := common.HexToAddress(fmt.Sprintf("0x%040x", 0x1000+a))
		assert.LessOrEqual(t, env.ctrl.AccountAdmitted(account), uint64(3))
	}

	snap := env.ctrl.Snapshot()
	assert.True(t, snap.TreasuryBalance.Equal(decimal.RequireFromString("5")))
	supply, err := env.ledger.TotalSupply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(25), supply.Int64())
}

func TestAdmit_RejectsNegativePayment(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t, openSale(10, 5, "0"))

	_, err := env.admit(buyer, 1, "-5")
	assert.ErrorIs(t, err, sale.ErrNegativeAmount)
	assert.Zero(t, env.ctrl.TotalAdmitted())
	assert.True(t, env.ctrl.Balance().IsZero())

	_, err = env.ledger.OwnerOf(context.Background(), big.NewInt(1))
	assert.Error(t, err)
}

func TestAdmit_UnconfirmedIssuanceIsCounted(t *testing.T) {
	l := mocks.NewLedger(t)
	l.EXPECT().Issue(mock.Anything, buyer, big.NewInt(1)).
		Return(&sale.UnconfirmedError{Operation: "mint", TxHash: "0xfeed", Err: context.DeadlineExceeded}).Once()

	store := salestore.NewMemoryStore()
	ctrl, err := New(context.Background(), store, l, admin)
	require.NoError(t, err)
	require.NoError(t, ctrl.Grant(context.Background(), admin, sale.Seller, seller))
	_, err = ctrl.Configure(context.Background(), seller, openSale(10, 1, "0.2"))
	require.NoError(t, err)

	adm, err := ctrl.Admit(context.Background(), buyer, big.NewInt(1), decimal.RequireFromString("0.2"), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "0xfeed", adm.PendingTx)
	assert.Equal(t, uint64(1), ctrl.AccountAdmitted(buyer))
	assert.True(t, ctrl.Balance().Equal(decimal.RequireFromString("0.2")))

	// the quota binds as if the unit had been confirmed
	_, err = ctrl.Admit(context.Background(), buyer, big.NewInt(2), decimal.RequireFromString("0.2"), fixedNow)
	assert.True(t, sale.IsDenied(err, sale.AccountQuotaExceeded), "got %v", err)

	persisted, err := store.LoadState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), persisted.TotalAdmitted)
}

func TestAdmit_ReentryIntoEveryMutationIsRejected(t *testing.T) {
	l := mocks.NewLedger(t)

	ctrl, err := New(context.Background(), salestore.NewMemoryStore(), l, admin)
	require.NoError(t, err)
	require.NoError(t, ctrl.Grant(context.Background(), admin, sale.Seller, seller))
	_, err = ctrl.Configure(context.Background(), seller, openSale(10, 1, "0.2"))
	require.NoError(t, err)

	var errs []error
	l.EXPECT().Issue(mock.Anything, buyer, mock.Anything).
		RunAndReturn(func(ctx context.Context, recipient common.Address, _ *big.Int) error {
			_, err := ctrl.SetBlacklisted(ctx, seller, recipient, true)
			errs = append(errs, err)
			_, err = ctrl.Configure(ctx, seller, openSale(0, 0, "0"))
			errs = append(errs, err)
			errs = append(errs, ctrl.Grant(ctx, admin, sale.Seller, recipient))
			_, err = ctrl.Withdraw(ctx, admin)
			errs = append(errs, err)
			return nil
		}).Once()

	_, err = ctrl.Admit(context.Background(), buyer, big.NewInt(1), decimal.RequireFromString("0.2"), fixedNow)
	require.NoError(t, err)

	require.Len(t, errs, 4)
	for _, err := range errs {
		assert.ErrorIs(t, err, sale.ErrReentrantAdmission)
	}
	assert.False(t, ctrl.IsBlacklisted(buyer))
	assert.False(t, ctrl.HasRole(sale.Seller, buyer))
	assert.Equal(t, uint64(10), ctrl.CurrentConfig().SupplyCap)
}
