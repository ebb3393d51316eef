package sale

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventKind names a notification emitted by the controller.
type EventKind string

const (
	// EventBlacklistChanged fires on every successful blacklist update.
	EventBlacklistChanged EventKind = "UpdateBlacklist"
	// EventConfigChanged fires when a new sale configuration is installed.
	EventConfigChanged EventKind = "SetSaleConfig"
	// EventAdmissionSucceeded fires after a unit has been issued.
	EventAdmissionSucceeded EventKind = "MintToken"
)

// Event is an entry of the append-only, ordered notification log.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Seq        uint64    `json:"seq"`
	Kind       EventKind `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`

	Account     common.Address  `json:"account"`
	Blacklisted *bool           `json:"blacklisted,omitempty"`
	Config      *Config         `json:"config,omitempty"`
	TokenID     *big.Int        `json:"token_id,omitempty"`
	Payment     decimal.Decimal `json:"payment"`
}

func newEvent(seq uint64, kind EventKind, at time.Time) *Event {
	return &Event{
		ID:         uuid.New(),
		Seq:        seq,
		Kind:       kind,
		OccurredAt: at.UTC(),
		Payment:    decimal.Zero,
	}
}

// NewBlacklistEvent builds the UpdateBlacklist notification.
func NewBlacklistEvent(seq uint64, account common.Address, flag bool, at time.Time) *Event {
	evt := newEvent(seq, EventBlacklistChanged, at)
	evt.Account = account
	evt.Blacklisted = &flag
	return evt
}

// NewConfigEvent builds the SetSaleConfig notification.
func NewConfigEvent(seq uint64, cfg Config, at time.Time) *Event {
	evt := newEvent(seq, EventConfigChanged, at)
	evt.Config = &cfg
	return evt
}

// NewAdmissionEvent builds the MintToken notification.
func NewAdmissionEvent(seq uint64, account common.Address, tokenID *big.Int, payment decimal.Decimal, at time.Time) *Event {
	evt := newEvent(seq, EventAdmissionSucceeded, at)
	evt.Account = account
	evt.TokenID = new(big.Int).Set(tokenID)
	evt.Payment = payment
	return evt
}
