package service

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/primary-sale-minter/internal/metrics"
	apperrors "github.com/chainsafe/primary-sale-minter/pkg/app/errors"
	"github.com/chainsafe/primary-sale-minter/pkg/sale"
)

const serviceName = "SaleService"

// logService wraps Service with logging of mutating calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the sale Service.
// Mutations are logged on entry and exit with their duration. Client errors
// such as admission denials are logged at info, everything else at error.
// Read-only queries pass through silently.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) started(method string, fields ...zap.Field) time.Time {
	ls.logger.Info(method+" started", append(ls.base(method), fields...)...)
	return time.Now()
}

func (ls *logService) finished(method string, start time.Time, err error, fields ...zap.Field) {
	fields = append(ls.base(method), append(fields, zap.Duration("duration", time.Since(start)))...)

	if err == nil {
		metrics.RequestsTotal.WithLabelValues(method, "ok").Inc()
		ls.logger.Info(method+" completed", fields...)
		return
	}

	var svcErr *apperrors.ServiceError
	if apperrors.IsInternalError(err) || !errors.As(err, &svcErr) {
		metrics.RequestsTotal.WithLabelValues(method, apperrors.CategoryGeneralError.String()).Inc()
		ls.logger.Error(method+" failed", append(fields, zap.Error(err))...)
		return
	}
	metrics.RequestsTotal.WithLabelValues(method, svcErr.Category.String()).Inc()
	if svcErr.Reason != "" {
		fields = append(fields, zap.String("reason", svcErr.Reason))
	}
	ls.logger.Info(method+" rejected",
		append(fields, zap.Stringer("category", svcErr.Category), zap.String("message", svcErr.Message))...)
}

func (ls *logService) base(method string) []zap.Field {
	return []zap.Field{zap.String("service", serviceName), zap.String("method", method)}
}

// Grant wraps the service method with logging
func (ls *logService) Grant(ctx context.Context, caller common.Address, req *RoleRequest) (err error) {
	fields := []zap.Field{
		zap.String("caller", caller.Hex()),
		zap.String("role", req.Role),
		zap.String("account", req.Account),
	}
	start := ls.started("Grant", fields...)
	defer func() { ls.finished("Grant", start, err, fields...) }()

	return ls.svc.Grant(ctx, caller, req)
}

// Revoke wraps the service method with logging
func (ls *logService) Revoke(ctx context.Context, caller common.Address, req *RoleRequest) (err error) {
	fields := []zap.Field{
		zap.String("caller", caller.Hex()),
		zap.String("role", req.Role),
		zap.String("account", req.Account),
	}
	start := ls.started("Revoke", fields...)
	defer func() { ls.finished("Revoke", start, err, fields...) }()

	return ls.svc.Revoke(ctx, caller, req)
}

func (ls *logService) HasRole(ctx context.Context, role, account string) (*RoleResponse, error) {
	return ls.svc.HasRole(ctx, role, account)
}

// SetBlacklisted wraps the service method with logging
func (ls *logService) SetBlacklisted(ctx context.Context, caller common.Address, req *BlacklistRequest) (evt *sale.Event, err error) {
	fields := []zap.Field{
		zap.String("caller", caller.Hex()),
		zap.String("account", req.Account),
		zap.Bool("blacklisted", req.Blacklisted),
	}
	start := ls.started("SetBlacklisted", fields...)
	defer func() {
		if evt != nil {
			fields = append(fields, zap.Uint64("event_seq", evt.Seq))
		}
		ls.finished("SetBlacklisted", start, err, fields...)
	}()

	return ls.svc.SetBlacklisted(ctx, caller, req)
}

func (ls *logService) IsBlacklisted(ctx context.Context, account string) (*BlacklistResponse, error) {
	return ls.svc.IsBlacklisted(ctx, account)
}

// Configure wraps the service method with logging
func (ls *logService) Configure(ctx context.Context, caller common.Address, req *ConfigRequest) (evt *sale.Event, err error) {
	fields := []zap.Field{
		zap.String("caller", caller.Hex()),
		zap.Time("start_time", req.StartTime),
		zap.Time("end_time", req.EndTime),
		zap.Uint64("supply_cap", req.SupplyCap),
		zap.String("unit_price", req.UnitPrice),
		zap.Uint64("per_account_cap", req.PerAccountCap),
	}
	start := ls.started("Configure", fields...)
	defer func() {
		if evt != nil {
			fields = append(fields, zap.Uint64("event_seq", evt.Seq))
		}
		ls.finished("Configure", start, err, fields...)
	}()

	return ls.svc.Configure(ctx, caller, req)
}

func (ls *logService) CurrentConfig(ctx context.Context) (*ConfigResponse, error) {
	return ls.svc.CurrentConfig(ctx)
}

// Mint wraps the service method with logging
func (ls *logService) Mint(ctx context.Context, caller common.Address, req *MintRequest) (resp *MintResponse, err error) {
	fields := []zap.Field{
		zap.String("caller", caller.Hex()),
		zap.String("token_id", req.TokenID),
		zap.String("payment", req.Payment),
		zap.String("payment_tx", req.PaymentTx),
	}
	start := ls.started("Mint", fields...)
	defer func() {
		if resp != nil {
			fields = append(fields,
				zap.Uint64("account_admitted", resp.AccountAdmitted),
				zap.Uint64("total_admitted", resp.TotalAdmitted),
				zap.Uint64("event_seq", resp.EventSeq),
				zap.String("pending_tx", resp.PendingTx),
			)
		}
		ls.finished("Mint", start, err, fields...)
	}()

	return ls.svc.Mint(ctx, caller, req)
}

func (ls *logService) Counts(ctx context.Context) (*CountsResponse, error) {
	return ls.svc.Counts(ctx)
}

func (ls *logService) Account(ctx context.Context, account string) (*AccountResponse, error) {
	return ls.svc.Account(ctx, account)
}

func (ls *logService) Treasury(ctx context.Context) (*TreasuryResponse, error) {
	return ls.svc.Treasury(ctx)
}

// Withdraw wraps the service method with logging
func (ls *logService) Withdraw(ctx context.Context, caller common.Address) (resp *WithdrawResponse, err error) {
	fields := []zap.Field{zap.String("caller", caller.Hex())}
	start := ls.started("Withdraw", fields...)
	defer func() {
		if resp != nil {
			fields = append(fields, zap.String("amount", resp.Amount))
		}
		ls.finished("Withdraw", start, err, fields...)
	}()

	return ls.svc.Withdraw(ctx, caller)
}

func (ls *logService) Events(ctx context.Context, after uint64, limit int) (*EventsResponse, error) {
	return ls.svc.Events(ctx, after, limit)
}

func (ls *logService) LedgerBalance(ctx context.Context, account string) (*LedgerBalanceResponse, error) {
	return ls.svc.LedgerBalance(ctx, account)
}

func (ls *logService) LedgerOwner(ctx context.Context, tokenID string) (*LedgerOwnerResponse, error) {
	return ls.svc.LedgerOwner(ctx, tokenID)
}
