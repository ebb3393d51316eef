// Package service exposes the sale controller to clients: request validation,
// error mapping onto service error categories, metrics and the HTTP routes.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainsafe/primary-sale-minter/internal/metrics"
	apperrors "github.com/chainsafe/primary-sale-minter/pkg/app/errors"
	"github.com/chainsafe/primary-sale-minter/pkg/auth"
	"github.com/chainsafe/primary-sale-minter/pkg/claims"
	"github.com/chainsafe/primary-sale-minter/pkg/sale"
	"github.com/chainsafe/primary-sale-minter/pkg/sale/controller"
)

const (
	defaultEventPage = 100
	maxEventPage     = 500
)

// PaymentVerifier proves that a transaction paid the treasury and returns the
// amount it carried. Failures that disprove the payment wrap sale.ErrPaymentInvalid.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, payer common.Address, txHash common.Hash) (decimal.Decimal, error)
}

// Service defines the client-facing sale operations. Mutations take the
// authenticated caller.
type Service interface {
	Grant(ctx context.Context, caller common.Address, req *RoleRequest) error
	Revoke(ctx context.Context, caller common.Address, req *RoleRequest) error
	HasRole(ctx context.Context, role, account string) (*RoleResponse, error)

	SetBlacklisted(ctx context.Context, caller common.Address, req *BlacklistRequest) (*sale.Event, error)
	IsBlacklisted(ctx context.Context, account string) (*BlacklistResponse, error)

	Configure(ctx context.Context, caller common.Address, req *ConfigRequest) (*sale.Event, error)
	CurrentConfig(ctx context.Context) (*ConfigResponse, error)

	Mint(ctx context.Context, caller common.Address, req *MintRequest) (*MintResponse, error)
	Counts(ctx context.Context) (*CountsResponse, error)
	Account(ctx context.Context, account string) (*AccountResponse, error)

	Treasury(ctx context.Context) (*TreasuryResponse, error)
	Withdraw(ctx context.Context, caller common.Address) (*WithdrawResponse, error)

	Events(ctx context.Context, after uint64, limit int) (*EventsResponse, error)

	LedgerBalance(ctx context.Context, account string) (*LedgerBalanceResponse, error)
	LedgerOwner(ctx context.Context, tokenID string) (*LedgerOwnerResponse, error)
}

type saleService struct {
	ctrl     *controller.Controller
	ledger   controller.Ledger
	clock    func() time.Time
	validate *validator.Validate
	logger   *zap.Logger

	payments PaymentVerifier
	spent    claims.Store
}

// Option configures the sale service.
type Option func(*saleService)

// WithPaymentVerifier makes Mint require a payment transaction, verified by v.
// The verified amount replaces the declared one, and spent records used
// transactions so each funds one admission. Without it the declared payment
// is trusted.
func WithPaymentVerifier(v PaymentVerifier, spent claims.Store) Option {
	return func(s *saleService) {
		s.payments = v
		s.spent = spent
	}
}

// NewService creates the sale service on top of ctrl. ledger serves the
// read-only ledger queries and is usually the one ctrl issues on.
func NewService(ctrl *controller.Controller, ledger controller.Ledger, clock func() time.Time, logger *zap.Logger, opts ...Option) Service {
	if clock == nil {
		clock = time.Now
	}
	s := &saleService{
		ctrl:     ctrl,
		ledger:   ledger,
		clock:    clock,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.payments != nil && s.spent == nil {
		s.spent = claims.NewMemory()
	}
	s.refreshGauges()
	return s
}

func (s *saleService) check(req any) error {
	if err := s.validate.Struct(req); err != nil {
		return apperrors.BadRequestError(err, "invalid request: "+err.Error())
	}
	return nil
}

func parseAccount(account string) (common.Address, error) {
	addr, err := auth.ParseAddress(account)
	if err != nil {
		return common.Address{}, apperrors.BadRequestError(err, "invalid account address")
	}
	return addr, nil
}

func parseTokenID(s string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(s, 10)
	if !ok || id.Sign() < 0 {
		return nil, apperrors.BadRequestError(fmt.Errorf("bad token id %q", s), "invalid token id")
	}
	return id, nil
}

func (s *saleService) Grant(ctx context.Context, caller common.Address, req *RoleRequest) error {
	return s.setRole(ctx, caller, req, true)
}

func (s *saleService) Revoke(ctx context.Context, caller common.Address, req *RoleRequest) error {
	return s.setRole(ctx, caller, req, false)
}

func (s *saleService) setRole(ctx context.Context, caller common.Address, req *RoleRequest, granted bool) error {
	if err := s.check(req); err != nil {
		return err
	}
	role, err := sale.ParseRole(req.Role)
	if err != nil {
		return apperrors.BadRequestError(err, "unknown role")
	}
	account, err := parseAccount(req.Account)
	if err != nil {
		return err
	}

	if granted {
		err = s.ctrl.Grant(ctx, caller, role, account)
	} else {
		err = s.ctrl.Revoke(ctx, caller, role, account)
	}
	return mapError(err)
}

func (s *saleService) HasRole(_ context.Context, roleName, account string) (*RoleResponse, error) {
	role, err := sale.ParseRole(roleName)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "unknown role")
	}
	addr, err := parseAccount(account)
	if err != nil {
		return nil, err
	}
	return &RoleResponse{
		Role:    role.String(),
		RoleID:  role.ID().Hex(),
		Account: addr.Hex(),
		HasRole: s.ctrl.HasRole(role, addr),
	}, nil
}

func (s *saleService) SetBlacklisted(ctx context.Context, caller common.Address, req *BlacklistRequest) (*sale.Event, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	account, err := parseAccount(req.Account)
	if err != nil {
		return nil, err
	}
	evt, err := s.ctrl.SetBlacklisted(ctx, caller, account, req.Blacklisted)
	if err != nil {
		return nil, mapError(err)
	}
	return evt, nil
}

func (s *saleService) IsBlacklisted(_ context.Context, account string) (*BlacklistResponse, error) {
	addr, err := parseAccount(account)
	if err != nil {
		return nil, err
	}
	return &BlacklistResponse{Account: addr.Hex(), Blacklisted: s.ctrl.IsBlacklisted(addr)}, nil
}

func (s *saleService) Configure(ctx context.Context, caller common.Address, req *ConfigRequest) (*sale.Event, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	price, err := parseAmount(req.UnitPrice)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid unit price: "+err.Error())
	}

	evt, err := s.ctrl.Configure(ctx, caller, sale.Config{
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		SupplyCap:     req.SupplyCap,
		UnitPrice:     price,
		PerAccountCap: req.PerAccountCap,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return evt, nil
}

func (s *saleService) CurrentConfig(context.Context) (*ConfigResponse, error) {
	return toConfigResponse(s.ctrl.CurrentConfig(), s.clock()), nil
}

func (s *saleService) Mint(ctx context.Context, caller common.Address, req *MintRequest) (*MintResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	tokenID, err := parseTokenID(req.TokenID)
	if err != nil {
		return nil, err
	}
	payment, err := parseAmount(req.Payment)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid payment: "+err.Error())
	}

	var release func()
	if s.payments != nil {
		payment, release, err = s.verifyPayment(ctx, caller, req.PaymentTx)
		if err != nil {
			return nil, err
		}
	}

	adm, err := s.ctrl.Admit(ctx, caller, tokenID, payment, s.clock())
	s.recordAdmission(adm, err)
	if adm != nil {
		s.refreshGauges()
	} else if release != nil {
		release()
	}
	if err != nil {
		return nil, mapError(err)
	}

	return &MintResponse{
		Account:         adm.Account.Hex(),
		TokenID:         adm.TokenID.String(),
		Payment:         adm.Payment.String(),
		AccountAdmitted: adm.AccountAdmitted,
		TotalAdmitted:   adm.TotalAdmitted,
		EventSeq:        adm.Event.Seq,
		PendingTx:       adm.PendingTx,
	}, nil
}

// verifyPayment proves the payment transaction and marks it spent. release
// frees it again for an admission that did not happen.
func (s *saleService) verifyPayment(ctx context.Context, caller common.Address, txHex string) (decimal.Decimal, func(), error) {
	if txHex == "" {
		return decimal.Zero, nil, apperrors.BadRequestError(errors.New("missing payment_tx"), "payment transaction required")
	}
	txHash := common.HexToHash(txHex)

	paid, err := s.payments.VerifyPayment(ctx, caller, txHash)
	if err != nil {
		if errors.Is(err, sale.ErrPaymentInvalid) {
			return decimal.Zero, nil, mapError(err)
		}
		return decimal.Zero, nil, apperrors.DependencyError(err, "payment verification failed")
	}

	key := "payment:" + txHash.Hex()
	fresh, err := s.spent.Claim(ctx, key, 0)
	if err != nil {
		return decimal.Zero, nil, apperrors.DependencyError(err, "payment registry unavailable")
	}
	if !fresh {
		return decimal.Zero, nil, apperrors.ConflictError(fmt.Errorf("payment %s already spent", txHash.Hex()), "payment transaction already used")
	}

	release := func() {
		if err := s.spent.Release(context.WithoutCancel(ctx), key); err != nil {
			s.logger.Warn("Failed to release payment transaction", zap.String("tx_hash", txHash.Hex()), zap.Error(err))
		}
	}
	return paid, release, nil
}

func (s *saleService) recordAdmission(adm *sale.Admission, err error) {
	var rejected *sale.LedgerRejectedError
	switch reason, denied := sale.DenialOf(err); {
	case err == nil && adm.PendingTx != "":
		metrics.AdmissionsTotal.WithLabelValues("unconfirmed").Inc()
	case err == nil:
		metrics.AdmissionsTotal.WithLabelValues("admitted").Inc()
	case denied:
		metrics.AdmissionsTotal.WithLabelValues("denied").Inc()
		metrics.DenialsTotal.WithLabelValues(reason.Code()).Inc()
	case errors.As(err, &rejected):
		metrics.AdmissionsTotal.WithLabelValues("ledger_rejected").Inc()
	default:
		metrics.AdmissionsTotal.WithLabelValues("error").Inc()
	}
}

func (s *saleService) refreshGauges() {
	snap := s.ctrl.Snapshot()
	metrics.TotalAdmitted.Set(float64(snap.TotalAdmitted))
	metrics.TreasuryBalance.Set(snap.TreasuryBalance.InexactFloat64())
}

func (s *saleService) Counts(context.Context) (*CountsResponse, error) {
	snap := s.ctrl.Snapshot()
	return &CountsResponse{
		TotalAdmitted: snap.TotalAdmitted,
		SupplyCap:     snap.Config.SupplyCap,
		Remaining:     remaining(snap.Config.SupplyCap, snap.TotalAdmitted),
	}, nil
}

func (s *saleService) Account(_ context.Context, account string) (*AccountResponse, error) {
	addr, err := parseAccount(account)
	if err != nil {
		return nil, err
	}
	return &AccountResponse{
		Account:       addr.Hex(),
		Admitted:      s.ctrl.AccountAdmitted(addr),
		PerAccountCap: s.ctrl.CurrentConfig().PerAccountCap,
		Blacklisted:   s.ctrl.IsBlacklisted(addr),
	}, nil
}

func (s *saleService) Treasury(context.Context) (*TreasuryResponse, error) {
	return &TreasuryResponse{Balance: s.ctrl.Balance().String()}, nil
}

func (s *saleService) Withdraw(ctx context.Context, caller common.Address) (*WithdrawResponse, error) {
	amount, err := s.ctrl.Withdraw(ctx, caller)
	if amount.IsPositive() {
		s.refreshGauges()
	}
	if err != nil {
		metrics.WithdrawalsTotal.WithLabelValues("error").Inc()
		return nil, mapError(err)
	}
	metrics.WithdrawalsTotal.WithLabelValues("ok").Inc()
	return &WithdrawResponse{To: caller.Hex(), Amount: amount.String()}, nil
}

func (s *saleService) Events(ctx context.Context, after uint64, limit int) (*EventsResponse, error) {
	switch {
	case limit <= 0:
		limit = defaultEventPage
	case limit > maxEventPage:
		limit = maxEventPage
	}
	events, err := s.ctrl.Events(ctx, after, limit)
	if err != nil {
		return nil, mapError(err)
	}
	next := after
	if n := len(events); n > 0 {
		next = events[n-1].Seq
	}
	return &EventsResponse{Events: events, Next: next}, nil
}

func (s *saleService) LedgerBalance(ctx context.Context, account string) (*LedgerBalanceResponse, error) {
	addr, err := parseAccount(account)
	if err != nil {
		return nil, err
	}
	bal, err := s.ledger.BalanceOf(ctx, addr)
	if err != nil {
		return nil, apperrors.DependencyError(err, "ledger balance query failed")
	}
	return &LedgerBalanceResponse{Account: addr.Hex(), Balance: bal.String()}, nil
}

func (s *saleService) LedgerOwner(ctx context.Context, tokenID string) (*LedgerOwnerResponse, error) {
	id, err := parseTokenID(tokenID)
	if err != nil {
		return nil, err
	}
	owner, err := s.ledger.OwnerOf(ctx, id)
	if err != nil {
		return nil, apperrors.ResourceNotFoundError(err, "token not found")
	}
	return &LedgerOwnerResponse{TokenID: id.String(), Owner: owner.Hex()}, nil
}
