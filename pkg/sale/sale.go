// Package sale defines the domain model of the primary sale admission controller:
// roles, sale terms, quota counters, treasury amounts and the notifications the
// controller emits.
package sale

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

// Role is a named privilege an account may hold.
type Role string

const (
	// Administrator manages roles and withdraws the treasury.
	Administrator Role = "admin"
	// Seller manages the blacklist and the sale configuration.
	Seller Role = "seller"
)

// Role ids as exposed by the on-chain access control contract.
var (
	AdministratorRoleID = common.Hash{}
	SellerRoleID        = crypto.Keccak256Hash([]byte("SELLER_ROLE"))
)

// Roles lists every known role.
var Roles = []Role{Administrator, Seller}

// ID returns the 32-byte role identifier.
func (r Role) ID() common.Hash {
	if r == Seller {
		return SellerRoleID
	}
	return AdministratorRoleID
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == Administrator || r == Seller
}

func (r Role) String() string {
	return string(r)
}

// ParseRole accepts a role name ("admin", "seller") or its hex role id.
func ParseRole(s string) (Role, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "admin", "administrator", "default_admin_role":
		return Administrator, nil
	case "seller", "seller_role":
		return Seller, nil
	}
	if strings.HasPrefix(v, "0x") && len(v) == 66 {
		id := common.HexToHash(v)
		switch id {
		case AdministratorRoleID:
			return Administrator, nil
		case SellerRoleID:
			return Seller, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Config holds the terms of the single active sale.
//
// The zero value is the configuration of a freshly initialized controller:
// an empty window and zero caps.
type Config struct {
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	SupplyCap     uint64          `json:"supply_cap"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	PerAccountCap uint64          `json:"per_account_cap"`
}

// Active reports whether now falls inside the inclusive window [StartTime, EndTime].
func (c Config) Active(now time.Time) bool {
	return !now.Before(c.StartTime) && !now.After(c.EndTime)
}

// State is the complete durable state of a controller.
type State struct {
	// Administrator is the bootstrap administrator recorded at initialization.
	Administrator common.Address
	Initialized   bool

	Roles     map[Role]map[common.Address]bool
	Blacklist map[common.Address]bool
	Config    Config

	TotalAdmitted   uint64
	AccountAdmitted map[common.Address]uint64
	TreasuryBalance decimal.Decimal
	LastEventSeq    uint64
}

// NewState returns an empty, uninitialized state.
func NewState() *State {
	roles := make(map[Role]map[common.Address]bool, len(Roles))
	for _, r := range Roles {
		roles[r] = make(map[common.Address]bool)
	}
	return &State{
		Roles:           roles,
		Blacklist:       make(map[common.Address]bool),
		AccountAdmitted: make(map[common.Address]uint64),
		TreasuryBalance: decimal.Zero,
	}
}

// Admission is the result of a successful admission, carrying the absolute
// post-admission counters so that stores can persist them without reading back.
type Admission struct {
	Account         common.Address  `json:"account"`
	TokenID         *big.Int        `json:"token_id"`
	Payment         decimal.Decimal `json:"payment"`
	AccountAdmitted uint64          `json:"account_admitted"`
	TotalAdmitted   uint64          `json:"total_admitted"`
	TreasuryBalance decimal.Decimal `json:"treasury_balance"`
	Event           *Event          `json:"event"`
	// PendingTx is set when the ledger accepted the issuance transaction but
	// its receipt was not observed. The admission is counted regardless.
	PendingTx string `json:"pending_tx,omitempty"`
}
