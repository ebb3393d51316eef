// Package controller implements the primary sale admission controller: the role
// and blacklist registries, the sale configuration, the quota counters, the
// treasury and the admission pipeline that ties them to the asset ledger.
//
// All mutations are serialized behind a single writer lock and persisted through
// Store before they become visible. Queries share a read lock and therefore always
// observe a consistent snapshot.
package controller

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainsafe/primary-sale-minter/pkg/sale"
)

// Ledger is the asset ledger the controller issues units on.
//
// Issue runs while the controller holds its writer lock. An implementation that
// calls back into the controller must pass on the context it received: every
// mutation refuses that context with sale.ErrReentrantAdmission, while a call
// made with an unrelated context blocks until Issue returns.
//
// Issue returns a *sale.UnconfirmedError when the transaction was submitted but
// its outcome is unknown. Any other error means no unit was issued.
//
//go:generate mockery --name Ledger --output mocks --outpkg mocks --filename mock_ledger.go --with-expecter
type Ledger interface {
	Issue(ctx context.Context, recipient common.Address, tokenID *big.Int) error
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
	OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error)
}

// Store persists controller state. Every Save call is atomic: either all of the
// values it carries become durable, or none do.
//
//go:generate mockery --name Store --output mocks --outpkg mocks --filename mock_store.go --with-expecter
type Store interface {
	LoadState(ctx context.Context) (*sale.State, error)
	Initialize(ctx context.Context, admin common.Address) error
	SaveRole(ctx context.Context, role sale.Role, account common.Address, granted bool) error
	SaveBlacklist(ctx context.Context, evt *sale.Event) error
	SaveConfig(ctx context.Context, evt *sale.Event) error
	SaveAdmission(ctx context.Context, adm *sale.Admission) error
	SaveTreasury(ctx context.Context, balance decimal.Decimal) error
	ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]*sale.Event, error)
}

// Payout transfers withdrawn treasury funds to the administrator. Like Issue,
// Pay reports a submitted but unconfirmed transfer as *sale.UnconfirmedError.
type Payout interface {
	Pay(ctx context.Context, to common.Address, amount decimal.Decimal) error
}

// Publisher fans committed notifications out to external consumers.
type Publisher interface {
	Publish(ctx context.Context, evt *sale.Event) error
}

// Controller owns the sale state.
type Controller struct {
	mu    sync.RWMutex
	state *sale.State

	store     Store
	ledger    Ledger
	payout    Payout
	publisher Publisher
	clock     func() time.Time
	logger    *zap.Logger

	// unsynced is a write that the ledger or payout already reflects but the
	// store rejected. Mutations are refused until it has been replayed.
	unsynced  *unsyncedWrite
	outOfSync atomic.Bool
}

type unsyncedWrite struct {
	what string
	save func(ctx context.Context) error
	evt  *sale.Event
}

// Option configures a Controller.
type Option func(*Controller)

// WithPayout sets the collaborator that receives treasury withdrawals.
func WithPayout(p Payout) Option {
	return func(c *Controller) {
		c.payout = p
	}
}

// WithPublisher sets the notification publisher.
func WithPublisher(p Publisher) Option {
	return func(c *Controller) {
		c.publisher = p
	}
}

// WithClock overrides the time source used to stamp notifications.
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New loads the persisted state and returns a ready controller. On first start
// the admin account is granted Administrator and the initialization is persisted.
func New(ctx context.Context, store Store, ledger Ledger, admin common.Address, opts ...Option) (*Controller, error) {
	if store == nil {
		return nil, fmt.Errorf("nil store")
	}
	if ledger == nil {
		return nil, fmt.Errorf("nil ledger")
	}

	c := &Controller{
		store:  store,
		ledger: ledger,
		clock:  time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.payout == nil {
		c.payout = bookkeepingPayout{logger: c.logger}
	}

	state, err := store.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	normalize(state)

	if !state.Initialized {
		if admin == (common.Address{}) {
			return nil, fmt.Errorf("administrator address is required to initialize the controller")
		}
		if err := store.Initialize(ctx, admin); err != nil {
			return nil, fmt.Errorf("initialize state: %w", err)
		}
		state.Initialized = true
		state.Administrator = admin
		state.Roles[sale.Administrator][admin] = true
		c.logger.Info("Sale controller initialized", zap.String("administrator", admin.Hex()))
	} else if admin != (common.Address{}) && admin != state.Administrator {
		c.logger.Warn("Configured administrator differs from the persisted bootstrap administrator; keeping persisted roles",
			zap.String("configured", admin.Hex()),
			zap.String("persisted", state.Administrator.Hex()),
		)
	}

	c.state = state
	return c, nil
}

// normalize fills in maps a store may leave nil.
func normalize(state *sale.State) {
	if state.Roles == nil {
		state.Roles = make(map[sale.Role]map[common.Address]bool)
	}
	for _, r := range sale.Roles {
		if state.Roles[r] == nil {
			state.Roles[r] = make(map[common.Address]bool)
		}
	}
	if state.Blacklist == nil {
		state.Blacklist = make(map[common.Address]bool)
	}
	if state.AccountAdmitted == nil {
		state.AccountAdmitted = make(map[common.Address]uint64)
	}
}

// publish forwards a committed event. The event is already durable, so a
// publishing failure is only logged.
func (c *Controller) publish(ctx context.Context, evt *sale.Event) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, evt); err != nil {
		c.logger.Warn("Failed to publish sale event",
			zap.String("kind", string(evt.Kind)),
			zap.Uint64("seq", evt.Seq),
			zap.Error(err),
		)
	}
}

// lock takes the writer lock for a mutation. A context handed to the ledger by
// an admission in flight is refused, and a pending unsynced write is replayed
// before the mutation may run.
func (c *Controller) lock(ctx context.Context) (func(), error) {
	if ctx.Value(admissionKey{}) != nil {
		return nil, sale.ErrReentrantAdmission
	}
	c.mu.Lock()
	if err := c.resync(ctx); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	return c.mu.Unlock, nil
}

// markUnsynced records a write the store missed. The caller holds the writer lock.
func (c *Controller) markUnsynced(what string, save func(ctx context.Context) error, evt *sale.Event) {
	c.unsynced = &unsyncedWrite{what: what, save: save, evt: evt}
	c.outOfSync.Store(true)
}

func (c *Controller) resync(ctx context.Context) error {
	pending := c.unsynced
	if pending == nil {
		return nil
	}
	if err := pending.save(ctx); err != nil {
		c.logger.Warn("Store still rejects unsynced write", zap.String("write", pending.what), zap.Error(err))
		return fmt.Errorf("%w: replay %s: %v", sale.ErrStoreOutOfSync, pending.what, err)
	}

	c.unsynced = nil
	c.outOfSync.Store(false)
	c.logger.Info("Replayed unsynced write", zap.String("write", pending.what))
	if pending.evt != nil {
		c.publish(ctx, pending.evt)
	}
	return nil
}

// Sync replays a write the store missed, if any. It returns
// sale.ErrStoreOutOfSync while the store keeps failing or while another
// mutation holds the lock. Health checks call it.
func (c *Controller) Sync(ctx context.Context) error {
	if !c.outOfSync.Load() {
		return nil
	}
	if !c.mu.TryLock() {
		return sale.ErrStoreOutOfSync
	}
	defer c.mu.Unlock()

	return c.resync(ctx)
}

func (c *Controller) requireRole(role sale.Role, caller common.Address) error {
	if !c.state.Roles[role][caller] {
		return sale.ErrUnauthorized
	}
	return nil
}

// Events returns up to limit notifications with a sequence number greater than afterSeq.
func (c *Controller) Events(ctx context.Context, afterSeq uint64, limit int) ([]*sale.Event, error) {
	events, err := c.store.ListEvents(ctx, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Snapshot is a consistent view of the sale counters and terms.
type Snapshot struct {
	Config          sale.Config
	TotalAdmitted   uint64
	TreasuryBalance decimal.Decimal
	LastEventSeq    uint64
}

// Snapshot returns the current config, counters and balance under one read lock.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		Config:          c.state.Config,
		TotalAdmitted:   c.state.TotalAdmitted,
		TreasuryBalance: c.state.TreasuryBalance,
		LastEventSeq:    c.state.LastEventSeq,
	}
}

type bookkeepingPayout struct {
	logger *zap.Logger
}

func (p bookkeepingPayout) Pay(_ context.Context, to common.Address, amount decimal.Decimal) error {
	p.logger.Info("Treasury withdrawal recorded without on-chain transfer",
		zap.String("to", to.Hex()),
		zap.String("amount", amount.String()),
	)
	return nil
}
