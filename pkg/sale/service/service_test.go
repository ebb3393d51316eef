package service

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/primary-sale-minter/pkg/app/errors"
	"github.com/chainsafe/primary-sale-minter/pkg/ledger"
	"github.com/chainsafe/primary-sale-minter/pkg/sale"
	"github.com/chainsafe/primary-sale-minter/pkg/sale/controller"
	"github.com/chainsafe/primary-sale-minter/pkg/salestore"
)

var (
	admin  = common.HexToAddress("0x00000000000000000000000000000000000000a0")
	seller = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	buyer  = common.HexToAddress("0x00000000000000000000000000000000000000a2")

	fixedNow = time.Unix(1_700_000_000, 0).UTC()
)

func newTestService(t *testing.T, opts ...ledger.Option) (Service, *ledger.Memory) {
	t.Helper()

	led := ledger.NewMemory(admin, opts...)
	clock := func() time.Time { return fixedNow }
	ctrl, err := controller.New(context.Background(), salestore.NewMemoryStore(), led, admin,
		controller.WithClock(clock))
	require.NoError(t, err)

	svc := NewLog(NewService(ctrl, led, clock, zap.NewNop()), zap.NewNop())
	require.NoError(t, svc.Grant(context.Background(), admin, &RoleRequest{Role: "seller", Account: seller.Hex()}))
	return svc, led
}

func openSale(t *testing.T, svc Service, supplyCap, perAccountCap uint64, price string) {
	t.Helper()
	_, err := svc.Configure(context.Background(), seller, &ConfigRequest{
		StartTime:     fixedNow.Add(-time.Minute),
		EndTime:       fixedNow.Add(time.Hour),
		SupplyCap:     supplyCap,
		UnitPrice:     price,
		PerAccountCap: perAccountCap,
	})
	require.NoError(t, err)
}

func requireServiceError(t *testing.T, err error, cat apperrors.Category, reason string) *apperrors.ServiceError {
	t.Helper()
	require.Error(t, err)
	var svcErr *apperrors.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, cat, svcErr.Category, "category of %v", err)
	assert.Equal(t, reason, svcErr.Reason)
	return svcErr
}

func TestService_RoleQueries(t *testing.T) {
	svc, _ := newTestService(t, ledger.WithMinter())
	ctx := context.Background()

	resp, err := svc.HasRole(ctx, "seller", seller.Hex())
	require.NoError(t, err)
	assert.True(t, resp.HasRole)
	assert.Equal(t, sale.SellerRoleID.Hex(), resp.RoleID)

	// hex role ids are accepted too
	resp, err = svc.HasRole(ctx, sale.AdministratorRoleID.Hex(), admin.Hex())
	require.NoError(t, err)
	assert.True(t, resp.HasRole)
	assert.Equal(t, "admin", resp.Role)

	_, err = svc.HasRole(ctx, "minter", admin.Hex())
	requireServiceError(t, err, apperrors.CategoryDataError, "")

	_, err = svc.HasRole(ctx, "seller", "not-an-address")
	requireServiceError(t, err, apperrors.CategoryDataError, "")
}

func TestService_GrantRequiresAdministrator(t *testing.T) {
	svc, _ := newTestService(t, ledger.WithMinter())

	err := svc.Grant(context.Background(), seller, &RoleRequest{Role: "seller", Account: buyer.Hex()})
	requireServiceError(t, err, apperrors.CategoryForbidden, "")

	err = svc.Grant(context.Background(), admin, &RoleRequest{Role: "seller", Account: "0x1234"})
	requireServiceError(t, err, apperrors.CategoryDataError, "")
}

func TestService_MintAdmits(t *testing.T) {
	svc, led := newTestService(t, ledger.WithMinter())
	ctx := context.Background()
	openSale(t, svc, 10, 2, "0.2")

	resp, err := svc.Mint(ctx, buyer, &MintRequest{TokenID: "7", Payment: "0.25"})
	require.NoError(t, err)
	assert.Equal(t, buyer.Hex(), resp.Account)
	assert.Equal(t, "7", resp.TokenID)
	assert.Equal(t, uint64(1), resp.AccountAdmitted)
	assert.Equal(t, uint64(1), resp.TotalAdmitted)
	assert.NotZero(t, resp.EventSeq)

	owner, err := svc.LedgerOwner(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, buyer.Hex(), owner.Owner)

	bal, err := svc.LedgerBalance(ctx, buyer.Hex())
	require.NoError(t, err)
	assert.Equal(t, "1", bal.Balance)
	supply, err := led.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), supply.Int64())

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, &CountsResponse{TotalAdmitted: 1, SupplyCap: 10, Remaining: 9}, counts)

	acct, err := svc.Account(ctx, buyer.Hex())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), acct.Admitted)
	assert.Equal(t, uint64(2), acct.PerAccountCap)

	treasury, err := svc.Treasury(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.25", treasury.Balance)
}

func TestService_MintDenials(t *testing.T) {
	svc, _ := newTestService(t, ledger.WithMinter())
	ctx := context.Background()

	_, err := svc.Mint(ctx, buyer, &MintRequest{TokenID: "1", Payment: "1"})
	requireServiceError(t, err, apperrors.CategoryLocked, "0x2")

	openSale(t, svc, 2, 1, "0.2")

	_, err = svc.Mint(ctx, buyer, &MintRequest{TokenID: "1", Payment: "0.19"})
	requireServiceError(t, err, apperrors.CategoryDataError, "0x3")

	_, err = svc.Mint(ctx, buyer, &MintRequest{TokenID: "1", Payment: "0.2"})
	require.NoError(t, err)
	_, err = svc.Mint(ctx, buyer, &MintRequest{TokenID: "2", Payment: "0.2"})
	requireServiceError(t, err, apperrors.CategoryDataConflict, "0x4")

	_, err = svc.Mint(ctx, seller, &MintRequest{TokenID: "2", Payment: "0.2"})
	require.NoError(t, err)
	_, err = svc.Mint(ctx, admin, &MintRequest{TokenID: "3", Payment: "0.2"})
	requireServiceError(t, err, apperrors.CategoryDataConflict, "0x5")

	_, err = svc.SetBlacklisted(ctx, seller, &BlacklistRequest{Account: admin.Hex(), Blacklisted: true})
	require.NoError(t, err)
	_, err = svc.Mint(ctx, admin, &MintRequest{TokenID: "3", Payment: "0.2"})
	requireServiceError(t, err, apperrors.CategoryForbidden, "0x1")
}

func TestService_MintLedgerRejected(t *testing.T) {
	// no minter role on the ledger
	svc, _ := newTestService(t)
	openSale(t, svc, 10, 2, "0.2")

	_, err := svc.Mint(context.Background(), buyer, &MintRequest{TokenID: "1", Payment: "0.2"})
	svcErr := requireServiceError(t, err, apperrors.CategoryDataConflict, "")
	assert.Equal(t, ledger.ErrMissingMinterRole.Error(), svcErr.Message)

	counts, err := svc.Counts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, counts.TotalAdmitted)
}

func TestService_MintValidatesRequest(t *testing.T) {
	svc, _ := newTestService(t, ledger.WithMinter())
	ctx := context.Background()

	_, err := svc.Mint(ctx, buyer, &MintRequest{TokenID: "abc", Payment: "0.2"})
	requireServiceError(t, err, apperrors.CategoryDataError, "")

	_, err = svc.Mint(ctx, buyer, &MintRequest{TokenID: "1", Payment: ""})
	requireServiceError(t, err, apperrors.CategoryDataError, "")

	_, err = svc.Configure(ctx, seller, &ConfigRequest{UnitPrice: "lots"})
	requireServiceError(t, err, apperrors.CategoryDataError, "")
}

func TestService_Withdraw(t *testing.T) {
	svc, _ := newTestService(t, ledger.WithMinter())
	ctx := context.Background()

	_, err := svc.Withdraw(ctx, admin)
	requireServiceError(t, err, apperrors.CategoryDataConflict, "")

	openSale(t, svc, 10, 2, "0.2")
	_, err = svc.Mint(ctx, buyer, &MintRequest{TokenID: "1", Payment: "0.3"})
	require.NoError(t, err)

	_, err = svc.Withdraw(ctx, seller)
	requireServiceError(t, err, apperrors.CategoryForbidden, "")

	resp, err := svc.Withdraw(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, "0.3", resp.Amount)
	assert.Equal(t, admin.Hex(), resp.To)

	treasury, err := svc.Treasury(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0", treasury.Balance)
}

func TestService_EventsPaging(t *testing.T) {
	svc, _ := newTestService(t, ledger.WithMinter())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.SetBlacklisted(ctx, seller, &BlacklistRequest{Account: buyer.Hex(), Blacklisted: i%2 == 0})
		require.NoError(t, err)
	}

	page, err := svc.Events(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page.Events, 2)
	assert.Equal(t, page.Events[1].Seq, page.Next)

	rest, err := svc.Events(ctx, page.Next, 0)
	require.NoError(t, err)
	require.Len(t, rest.Events, 1)
	assert.Equal(t, sale.EventBlacklistChanged, rest.Events[0].Kind)

	empty, err := svc.Events(ctx, rest.Next, 10)
	require.NoError(t, err)
	assert.Empty(t, empty.Events)
	assert.Equal(t, rest.Next, empty.Next)
}

func TestService_CurrentConfigReportsActive(t *testing.T) {
	svc, _ := newTestService(t, ledger.WithMinter())

	cfg, err := svc.CurrentConfig(context.Background())
	require.NoError(t, err)
	assert.False(t, cfg.Active)

	openSale(t, svc, 10, 2, "0.200")
	cfg, err = svc.CurrentConfig(context.Background())
	require.NoError(t, err)
	assert.True(t, cfg.Active)
	assert.Equal(t, "0.2", cfg.UnitPrice)
}
