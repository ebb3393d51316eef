package sale

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the caller lacks the role an operation requires.
	ErrUnauthorized = errors.New("caller is not authorized")
	// ErrNothingToWithdraw is returned by a withdrawal from an empty treasury.
	ErrNothingToWithdraw = errors.New("treasury balance is zero")
	// ErrReentrantAdmission is returned when the ledger calls back into an admission in flight.
	ErrReentrantAdmission = errors.New("reentrant admission")
	// ErrNegativeAmount is returned for a negative unit price or payment.
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrStoreOutOfSync is returned while a write that already reached the
	// ledger or the payout account is still missing from the store.
	ErrStoreOutOfSync = errors.New("store is out of sync with the ledger")
	// ErrUnconfirmed marks a transaction that was submitted but whose outcome is unknown.
	ErrUnconfirmed = errors.New("transaction submitted but not confirmed")
	// ErrPaymentInvalid is returned when a payment transaction does not prove the declared payment.
	ErrPaymentInvalid = errors.New("invalid payment transaction")
)

// UnconfirmedError reports a transaction that left the node but whose receipt
// was not observed. It must be accounted as if it succeeded.
type UnconfirmedError struct {
	Operation string
	TxHash    string
	Err       error
}

func (e *UnconfirmedError) Error() string {
	return fmt.Sprintf("%s transaction %s not confirmed: %v", e.Operation, e.TxHash, e.Err)
}

func (e *UnconfirmedError) Unwrap() error {
	return e.Err
}

// Is matches ErrUnconfirmed.
func (e *UnconfirmedError) Is(target error) bool {
	return target == ErrUnconfirmed
}

// PendingTx returns the hash of the unconfirmed transaction carried by err, if any.
func PendingTx(err error) (string, bool) {
	var unconfirmed *UnconfirmedError
	if errors.As(err, &unconfirmed) {
		return unconfirmed.TxHash, true
	}
	return "", false
}

// DenialReason identifies why an admission was refused.
type DenialReason int

const (
	Blacklisted DenialReason = iota + 1
	NoActiveSale
	InsufficientPayment
	AccountQuotaExceeded
	GlobalSupplyExceeded
)

// Code returns the stable code of the reason, matching the revert strings of
// the sale contract ("0x1" .. "0x5").
func (r DenialReason) Code() string {
	return fmt.Sprintf("0x%d", int(r))
}

func (r DenialReason) String() string {
	switch r {
	case Blacklisted:
		return "Blacklisted"
	case NoActiveSale:
		return "NoActiveSale"
	case InsufficientPayment:
		return "InsufficientPayment"
	case AccountQuotaExceeded:
		return "AccountQuotaExceeded"
	case GlobalSupplyExceeded:
		return "GlobalSupplyExceeded"
	default:
		return "Unknown"
	}
}

// DeniedError is returned when one of the admission checks fails.
type DeniedError struct {
	Reason DenialReason
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("admission denied: %s (%s)", e.Reason, e.Reason.Code())
}

// Denied builds a DeniedError for reason.
func Denied(reason DenialReason) error {
	return &DeniedError{Reason: reason}
}

// DenialOf returns the denial reason carried by err, if any.
func DenialOf(err error) (DenialReason, bool) {
	var denied *DeniedError
	if errors.As(err, &denied) {
		return denied.Reason, true
	}
	return 0, false
}

// IsDenied reports whether err is a denial with the given reason.
func IsDenied(err error, reason DenialReason) bool {
	got, ok := DenialOf(err)
	return ok && got == reason
}

// LedgerRejectedError wraps a failure returned by the asset ledger during issuance.
type LedgerRejectedError struct {
	Err error
}

func (e *LedgerRejectedError) Error() string {
	return "ledger rejected issuance: " + e.Err.Error()
}

func (e *LedgerRejectedError) Unwrap() error {
	return e.Err
}

// Reason returns the collaborator's error message verbatim.
func (e *LedgerRejectedError) Reason() string {
	return e.Err.Error()
}
