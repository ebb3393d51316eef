package service

import (
	"errors"

	apperrors "github.com/chainsafe/primary-sale-minter/pkg/app/errors"
	"github.com/chainsafe/primary-sale-minter/pkg/sale"
)

// mapError translates controller errors into client-facing service errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		return err
	}

	if reason, ok := sale.DenialOf(err); ok {
		return apperrors.WithReason(denialError(err, reason), reason.Code())
	}

	var rejected *sale.LedgerRejectedError
	if errors.As(err, &rejected) {
		return apperrors.ConflictError(err, rejected.Reason())
	}

	switch {
	case errors.Is(err, sale.ErrUnauthorized):
		return apperrors.ForbiddenError(err, "caller lacks the required role")
	case errors.Is(err, sale.ErrNothingToWithdraw):
		return apperrors.ConflictError(err, "nothing to withdraw")
	case errors.Is(err, sale.ErrReentrantAdmission):
		return apperrors.LockedError(err, "admission already in progress")
	case errors.Is(err, sale.ErrNegativeAmount):
		return apperrors.BadRequestError(err, "amount must not be negative")
	case errors.Is(err, sale.ErrPaymentInvalid):
		return apperrors.BadRequestError(err, "payment transaction not accepted")
	case errors.Is(err, sale.ErrStoreOutOfSync):
		return apperrors.DependencyError(err, "sale store is out of sync")
	}
	return apperrors.GeneralError(err)
}

func denialError(err error, reason sale.DenialReason) error {
	switch reason {
	case sale.Blacklisted:
		return apperrors.ForbiddenError(err, "account is blacklisted")
	case sale.NoActiveSale:
		return apperrors.LockedError(err, "no active sale")
	case sale.InsufficientPayment:
		return apperrors.BadRequestError(err, "insufficient payment")
	case sale.AccountQuotaExceeded:
		return apperrors.ConflictError(err, "account quota exceeded")
	case sale.GlobalSupplyExceeded:
		return apperrors.ConflictError(err, "sale supply exhausted")
	default:
		return apperrors.GeneralError(err)
	}
}
