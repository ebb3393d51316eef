package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/primary-sale-minter/pkg/app/errors"
	"github.com/chainsafe/primary-sale-minter/pkg/auth"
	"github.com/chainsafe/primary-sale-minter/pkg/claims"
	"github.com/chainsafe/primary-sale-minter/pkg/ledger"
	"github.com/chainsafe/primary-sale-minter/pkg/sale"
	"github.com/chainsafe/primary-sale-minter/pkg/sale/controller"
	"github.com/chainsafe/primary-sale-minter/pkg/sale/controller/mocks"
	"github.com/chainsafe/primary-sale-minter/pkg/salestore"
)

// fakeVerifier knows a fixed set of payments.
type fakeVerifier struct {
	payments map[common.Hash]struct {
		from   common.Address
		amount string
	}
	down bool
}

func (f *fakeVerifier) VerifyPayment(_ context.Context, payer common.Address, txHash common.Hash) (decimal.Decimal, error) {
	if f.down {
		return decimal.Zero, errors.New("rpc unavailable")
	}
	p, ok := f.payments[txHash]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s not found", sale.ErrPaymentInvalid, txHash.Hex())
	}
	if p.from != payer {
		return decimal.Zero, fmt.Errorf("%w: sent by %s", sale.ErrPaymentInvalid, p.from.Hex())
	}
	return decimal.RequireFromString(p.amount), nil
}

func txHash(n int) string {
	return common.BigToHash(big.NewInt(int64(n))).Hex()
}

func newVerifiedService(t *testing.T, v PaymentVerifier) Service {
	t.Helper()

	led := ledger.NewMemory(admin, ledger.WithMinter())
	clock := func() time.Time { return fixedNow }
	ctrl, err := controller.New(context.Background(), salestore.NewMemoryStore(), led, admin, controller.WithClock(clock))
	require.NoError(t, err)

	svc := NewService(ctrl, led, clock, zap.NewNop(), WithPaymentVerifier(v, claims.NewMemory()))
	require.NoError(t, svc.Grant(context.Background(), admin, &RoleRequest{Role: "seller", Account: seller.Hex()}))
	openSale(t, svc, 10, 2, "0.2")
	return svc
}

func TestService_MintVerifiesPayment(t *testing.T) {
	v := &fakeVerifier{payments: map[common.Hash]struct {
		from   common.Address
		amount string
	}{
		common.HexToHash(txHash(1)): {from: buyer, amount: "0.3"},
		common.HexToHash(txHash(2)): {from: buyer, amount: "0.1"},
		common.HexToHash(txHash(3)): {from: seller, amount: "0.2"},
	}}
	svc := newVerifiedService(t, v)
	ctx := context.Background()

	_, err := svc.Mint(ctx, buyer, &MintRequest{TokenID: "1", Payment: "0.2"})
	requireServiceError(t, err, apperrors.CategoryDataError, "")

	// the declared amount is replaced by the amount the transaction carried
	resp, err := svc.Mint(ctx, buyer, &MintRequest{TokenID: "1", Payment: "100", PaymentTx: txHash(1)})
	require.NoError(t, err)
	assert.Equal(t, "0.3", resp.Payment)

	_, err = svc.Mint(ctx, buyer, &MintRequest{TokenID: "2", Payment: "0.2", PaymentTx: txHash(1)})
	requireServiceError(t, err, apperrors.CategoryDataConflict, "")

	// a payment sent by someone else does not count for the caller
	_, err = svc.Mint(ctx, buyer, &MintRequest{TokenID: "2", Payment: "0.2", PaymentTx: txHash(3)})
	requireServiceError(t, err, apperrors.CategoryDataError, "")

	_, err = svc.Mint(ctx, buyer, &MintRequest{TokenID: "2", Payment: "0.2", PaymentTx: txHash(9)})
	requireServiceError(t, err, apperrors.CategoryDataError, "")

	// an underpaying transaction is denied
	_, err = svc.Mint(ctx, buyer, &MintRequest{TokenID: "2", Payment: "0.2", PaymentTx: txHash(2)})
	requireServiceError(t, err, apperrors.CategoryDataError, "0x3")

	treasury, err := svc.Treasury(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.3", treasury.Balance)

	v.down = true
	_, err = svc.Mint(ctx, buyer, &MintRequest{TokenID: "2", Payment: "0.2", PaymentTx: txHash(4)})
	requireServiceError(t, err, apperrors.CategoryDependencyFailure, "")
}

func TestService_DeniedMintReleasesPayment(t *testing.T) {
	v := &fakeVerifier{payments: map[common.Hash]struct {
		from   common.Address
		amount string
	}{
		common.HexToHash(txHash(1)): {from: buyer, amount: "0.2"},
	}}
	svc := newVerifiedService(t, v)
	ctx := context.Background()

	_, err := svc.SetBlacklisted(ctx, seller, &BlacklistRequest{Account: buyer.Hex(), Blacklisted: true})
	require.NoError(t, err)
	_, err = svc.Mint(ctx, buyer, &MintRequest{TokenID: "1", Payment: "0.2", PaymentTx: txHash(1)})
	requireServiceError(t, err, apperrors.CategoryForbidden, "0x1")

	_, err = svc.SetBlacklisted(ctx, seller, &BlacklistRequest{Account: buyer.Hex(), Blacklisted: false})
	require.NoError(t, err)
	_, err = svc.Mint(ctx, buyer, &MintRequest{TokenID: "1", Payment: "0.2", PaymentTx: txHash(1)})
	require.NoError(t, err)
}

func TestService_MintRejectsMalformedPaymentTx(t *testing.T) {
	svc, _ := newTestService(t, ledger.WithMinter())

	_, err := svc.Mint(context.Background(), buyer, &MintRequest{TokenID: "1", Payment: "0.2", PaymentTx: "0x1234"})
	requireServiceError(t, err, apperrors.CategoryDataError, "")
}

func TestService_NegativeAmountsRejected(t *testing.T) {
	svc, _ := newTestService(t, ledger.WithMinter())
	ctx := context.Background()
	openSale(t, svc, 10, 2, "0.2")

	_, err := svc.Mint(ctx, buyer, &MintRequest{TokenID: "1", Payment: "-5"})
	requireServiceError(t, err, apperrors.CategoryDataError, "")

	_, err = svc.Configure(ctx, seller, &ConfigRequest{
		StartTime: fixedNow, EndTime: fixedNow.Add(time.Hour), SupplyCap: 10, UnitPrice: "-1", PerAccountCap: 2,
	})
	requireServiceError(t, err, apperrors.CategoryDataError, "")

	cfg, err := svc.CurrentConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.2", cfg.UnitPrice)

	treasury, err := svc.Treasury(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0", treasury.Balance)
}

func TestService_EventsPageSize(t *testing.T) {
	svc, _ := newTestService(t, ledger.WithMinter())
	ctx := context.Background()

	for i := 0; i < maxEventPage+10; i++ {
		_, err := svc.SetBlacklisted(ctx, seller, &BlacklistRequest{Account: buyer.Hex(), Blacklisted: i%2 == 0})
		require.NoError(t, err)
	}

	page, err := svc.Events(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, page.Events, defaultEventPage)

	page, err = svc.Events(ctx, 0, 10_000)
	require.NoError(t, err)
	assert.Len(t, page.Events, maxEventPage)

	page, err = svc.Events(ctx, 0, 7)
	require.NoError(t, err)
	assert.Len(t, page.Events, 7)
}

func TestHTTP_UnconfirmedMintIsAccepted(t *testing.T) {
	l := mocks.NewLedger(t)
	l.EXPECT().Issue(mock.Anything, buyer, big.NewInt(1)).
		Return(&sale.UnconfirmedError{Operation: "mint", TxHash: "0xfeed", Err: context.DeadlineExceeded}).Once()

	clock := func() time.Time { return fixedNow }
	ctrl, err := controller.New(context.Background(), salestore.NewMemoryStore(), l, admin, controller.WithClock(clock))
	require.NoError(t, err)
	svc := NewService(ctrl, l, clock, zap.NewNop())
	require.NoError(t, svc.Grant(context.Background(), admin, &RoleRequest{Role: "seller", Account: seller.Hex()}))
	openSale(t, svc, 10, 2, "0.2")

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithCaller(r.Context(), auth.Caller{Address: buyer})))
		})
	})
	RegisterRoutes(r, svc, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sale/mint", strings.NewReader(`{"token_id":"1","payment":"0.2"}`)))
	expectStatus(t, rec, http.StatusAccepted)
	got := decode[MintResponse](t, rec)
	assert.Equal(t, "0xfeed", got.PendingTx)
	assert.Equal(t, uint64(1), got.TotalAdmitted)

	counts, err := svc.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), counts.TotalAdmitted)
}
