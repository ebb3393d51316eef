// Package salestore persists the state of the sale controller.
//
// Two implementations are provided: a Postgres store built on bun, used in
// production, and an in-memory store used by tests and single-process setups.
package salestore

import (
	"context"
	"errors"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/chainsafe/primary-sale-minter/pkg/sale"
)

const defaultEventLimit = 100

var (
	// ErrAlreadyInitialized is returned when Initialize runs twice.
	ErrAlreadyInitialized = errors.New("sale state already initialized")
	// ErrEventOutOfOrder is returned when an event does not extend the log by exactly one.
	ErrEventOutOfOrder = errors.New("event sequence out of order")
)

// MemoryStore keeps the sale state in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	state  *sale.State
	events []*sale.Event
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: sale.NewState()}
}

func (s *MemoryStore) LoadState(_ context.Context) (*sale.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneState(s.state), nil
}

func (s *MemoryStore) Initialize(_ context.Context, admin common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Initialized {
		return ErrAlreadyInitialized
	}
	s.state.Initialized = true
	s.state.Administrator = admin
	s.state.Roles[sale.Administrator][admin] = true
	return nil
}

func (s *MemoryStore) SaveRole(_ context.Context, role sale.Role, account common.Address, granted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Roles[role] == nil {
		s.state.Roles[role] = make(map[common.Address]bool)
	}
	if granted {
		s.state.Roles[role][account] = true
	} else {
		delete(s.state.Roles[role], account)
	}
	return nil
}

func (s *MemoryStore) SaveBlacklist(_ context.Context, evt *sale.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSeq(evt); err != nil {
		return err
	}
	if evt.Blacklisted != nil && *evt.Blacklisted {
		s.state.Blacklist[evt.Account] = true
	} else {
		delete(s.state.Blacklist, evt.Account)
	}
	s.appendEvent(evt)
	return nil
}

func (s *MemoryStore) SaveConfig(_ context.Context, evt *sale.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSeq(evt); err != nil {
		return err
	}
	if evt.Config != nil {
		s.state.Config = *evt.Config
	}
	s.appendEvent(evt)
	return nil
}

func (s *MemoryStore) SaveAdmission(_ context.Context, adm *sale.Admission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSeq(adm.Event); err != nil {
		return err
	}
	s.state.AccountAdmitted[adm.Account] = adm.AccountAdmitted
	s.state.TotalAdmitted = adm.TotalAdmitted
	s.state.TreasuryBalance = adm.TreasuryBalance
	s.appendEvent(adm.Event)
	return nil
}

func (s *MemoryStore) SaveTreasury(_ context.Context, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.TreasuryBalance = balance
	return nil
}

func (s *MemoryStore) ListEvents(_ context.Context, afterSeq uint64, limit int) ([]*sale.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = defaultEventLimit
	}
	// events are stored in seq order
	start := sort.Search(len(s.events), func(i int) bool {
		return s.events[i].Seq > afterSeq
	})
	end := start + limit
	if end > len(s.events) {
		end = len(s.events)
	}

	out := make([]*sale.Event, 0, end-start)
	for _, evt := range s.events[start:end] {
		out = append(out, cloneEvent(evt))
	}
	return out, nil
}

func (s *MemoryStore) checkSeq(evt *sale.Event) error {
	if evt == nil || evt.Seq != s.state.LastEventSeq+1 {
		return ErrEventOutOfOrder
	}
	return nil
}

func (s *MemoryStore) appendEvent(evt *sale.Event) {
	s.events = append(s.events, cloneEvent(evt))
	s.state.LastEventSeq = evt.Seq
}

func cloneState(src *sale.State) *sale.State {
	dst := sale.NewState()
	dst.Administrator = src.Administrator
	dst.Initialized = src.Initialized
	for role, members := range src.Roles {
		if dst.Roles[role] == nil {
			dst.Roles[role] = make(map[common.Address]bool, len(members))
		}
		for account, ok := range members {
			dst.Roles[role][account] = ok
		}
	}
	for account, flag := range src.Blacklist {
		dst.Blacklist[account] = flag
	}
	for account, n := range src.AccountAdmitted {
		dst.AccountAdmitted[account] = n
	}
	dst.Config = src.Config
	dst.TotalAdmitted = src.TotalAdmitted
	dst.TreasuryBalance = src.TreasuryBalance
	dst.LastEventSeq = src.LastEventSeq
	return dst
}

func cloneEvent(src *sale.Event) *sale.Event {
	dst := *src
	if src.Blacklisted != nil {
		flag := *src.Blacklisted
		dst.Blacklisted = &flag
	}
	if src.Config != nil {
		cfg := *src.Config
		dst.Config = &cfg
	}
	if src.TokenID != nil {
		dst.TokenID = new(big.Int).Set(src.TokenID)
	}
	return &dst
}
