// Package api implements app.Runner for the sale server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/chainsafe/primary-sale-minter/pkg/app"
	apphttp "github.com/chainsafe/primary-sale-minter/pkg/app/http"
	"github.com/chainsafe/primary-sale-minter/pkg/auth"
	"github.com/chainsafe/primary-sale-minter/pkg/claims"
	"github.com/chainsafe/primary-sale-minter/pkg/config"
	"github.com/chainsafe/primary-sale-minter/pkg/ethereum"
	"github.com/chainsafe/primary-sale-minter/pkg/ledger"
	"github.com/chainsafe/primary-sale-minter/pkg/notify"
	"github.com/chainsafe/primary-sale-minter/pkg/pgutil"
	"github.com/chainsafe/primary-sale-minter/pkg/sale/controller"
	saleservice "github.com/chainsafe/primary-sale-minter/pkg/sale/service"
	"github.com/chainsafe/primary-sale-minter/pkg/salestore"
)

const (
	healthCheckTimeout = 3 * time.Second
	claimsKeyPrefix    = "primary-sale:claims:"
)

// Server holds cfg to init the sale server.
type Server struct {
	cfg *config.Config
}

var _ app.Runner = (*Server)(nil)

// NewServer initializes new sale server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// healthCheck checks one dependency.
type healthCheck struct {
	name  string
	check func(ctx context.Context) error
}

// ledgerBackend is the issuing ledger together with its minter-role check.
type ledgerBackend interface {
	ledger.Ledger
	IsMinter(ctx context.Context) (bool, error)
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("sale server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting sale server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("ledger", cfg.Ledger.Driver),
	)

	var checks []healthCheck

	store, db, closeStore, err := s.openStore(logger, &checks)
	if err != nil {
		return err
	}
	defer closeStore()

	backend, payout, closeLedger, err := s.openLedger(logger)
	if err != nil {
		return err
	}
	defer closeLedger()
	s.checkMinterRole(ctx, backend, logger)

	rdb, closeRedis, err := s.openRedis(ctx, logger)
	if err != nil {
		return err
	}
	defer closeRedis()

	publisher := s.openPublisher(rdb, logger, &checks)
	replay, spent := s.openClaims(db, rdb, logger)

	opts := []controller.Option{
		controller.WithPublisher(publisher),
		controller.WithLogger(logger),
	}
	if payout != nil {
		opts = append(opts, controller.WithPayout(payout))
	}

	issuing := ledger.Instrument(backend)
	ctrl, err := controller.New(ctx, store, issuing, cfg.Sale.AdministratorAddress(), opts...)
	if err != nil {
		return fmt.Errorf("create controller: %w", err)
	}
	checks = append(checks, healthCheck{name: "controller", check: ctrl.Sync})

	var svcOpts []saleservice.Option
	if verifier, ok := backend.(saleservice.PaymentVerifier); ok {
		svcOpts = append(svcOpts, saleservice.WithPaymentVerifier(verifier, spent))
		logger.Info("Mint payments are verified on the ledger")
	} else {
		logger.Warn("Ledger cannot verify payments; declared mint payments are trusted")
	}
	svc := saleservice.NewLog(saleservice.NewService(ctrl, issuing, nil, logger, svcOpts...), logger)

	router := s.setupRouter(svc, checks, replay, logger)
	return apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)
}

func (s *Server) openStore(logger *zap.Logger, checks *[]healthCheck) (controller.Store, *bun.DB, func(), error) {
	if s.cfg.Storage.Driver != config.DriverPostgres {
		logger.Warn("Using in-memory storage; controller state is lost on restart")
		return salestore.NewMemoryStore(), nil, func() {}, nil
	}

	db, err := pgutil.ConnectDB(&s.cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Info("Connected to database",
		zap.String("host", s.cfg.Database.Host),
		zap.String("database", s.cfg.Database.Database),
	)
	*checks = append(*checks, healthCheck{name: "database", check: db.PingContext})

	return salestore.NewStore(db), db, func() { _ = db.Close() }, nil
}

func (s *Server) openLedger(logger *zap.Logger) (ledgerBackend, controller.Payout, func(), error) {
	if s.cfg.Ledger.Driver == config.DriverEthereum {
		client, err := ethereum.NewClient(&s.cfg.Ethereum, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create ethereum client: %w", err)
		}
		return client, client, client.Close, nil
	}

	opts := []ledger.Option{ledger.WithMinter()}
	if len(s.cfg.Ledger.Allowlist) > 0 {
		allow := make(ledger.StaticAllowlist, len(s.cfg.Ledger.Allowlist))
		for _, a := range s.cfg.Ledger.Allowlist {
			allow[common.HexToAddress(a)] = true
		}
		opts = append(opts, ledger.WithAllowlist(allow))
	}
	logger.Warn("Using in-memory ledger; issued units are lost on restart",
		zap.Int("allowlist_size", len(s.cfg.Ledger.Allowlist)))

	// no payout: withdrawals are bookkeeping only
	return ledger.NewMemory(s.cfg.Sale.AdministratorAddress(), opts...), nil, func() {}, nil
}

func (s *Server) checkMinterRole(ctx context.Context, backend ledgerBackend, logger *zap.Logger) {
	ok, err := backend.IsMinter(ctx)
	switch {
	case err != nil:
		logger.Warn("Could not verify minter role", zap.Error(err))
	case !ok:
		logger.Warn("Ledger operator is missing the minter role; every admission will be rejected by the ledger")
	default:
		logger.Info("Ledger operator holds the minter role")
	}
}

// openRedis connects the redis client shared by the event stream and the
// replay guard. It returns a nil client when no URL is configured.
func (s *Server) openRedis(ctx context.Context, logger *zap.Logger) (*redis.Client, func(), error) {
	rcfg := s.cfg.Notifications.Redis
	if rcfg.URL == "" {
		return nil, func() {}, nil
	}
	client, err := notify.NewRedisClient(ctx, rcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("Connected to redis")
	return client, func() { _ = client.Close() }, nil
}

func (s *Server) openPublisher(rdb *redis.Client, logger *zap.Logger, checks *[]healthCheck) notify.Publisher {
	publishers := notify.Multi{notify.NewLogPublisher(logger)}
	if rdb != nil {
		rcfg := s.cfg.Notifications.Redis
		stream := notify.NewRedisStream(rdb, rcfg.Stream, rcfg.MaxLen)
		publishers = append(publishers, stream)
		*checks = append(*checks, healthCheck{name: "redis", check: stream.Health})
		logger.Info("Publishing sale events to redis", zap.String("stream", rcfg.Stream))
	}
	return notify.NewInstrumented(publishers)
}

// openClaims picks the stores for used signed messages and spent payment
// transactions. Signed messages expire, so redis is preferred for them; spent
// payments are kept forever, so the database is preferred for those.
func (s *Server) openClaims(db *bun.DB, rdb *redis.Client, logger *zap.Logger) (replay, spent claims.Store) {
	var durable, shared claims.Store
	if db != nil {
		durable = claims.NewPostgres(db)
	}
	if rdb != nil {
		shared = claims.NewRedis(rdb, claimsKeyPrefix)
	}

	replay, spent = shared, durable
	if replay == nil {
		replay = durable
	}
	if spent == nil {
		spent = shared
	}
	if replay == nil {
		logger.Warn("Signed messages and spent payments are tracked in memory only; a restart forgets them")
		mem := claims.NewMemory()
		return mem, mem
	}
	return replay, spent
}

func (s *Server) setupRouter(svc saleservice.Service, checks []healthCheck, replay claims.Store, logger *zap.Logger) chi.Router {
	cfg := s.cfg

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	if !tokens.Enabled() {
		logger.Info("JWT secret not configured; only signed requests are accepted")
	}
	authn := auth.NewAuthenticator(tokens, cfg.Auth.SignatureMaxAge, logger, auth.WithReplayGuard(replay))
	limiter := apphttp.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst, auth.CallerKey)

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	r.Get("/health", healthHandler(checks, logger))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(authn.Middleware)
		auth.RegisterRoutes(r, tokens, cfg.Auth.JWTTTL)
		saleservice.RegisterRoutes(r, svc, limiter, logger)
	})

	return r
}

func healthHandler(checks []healthCheck, logger *zap.Logger) http.HandlerFunc {
	return apphttp.HandleError(func(w http.ResponseWriter, r *http.Request) error {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, c := range checks {
			if err := c.check(ctx); err != nil {
				logger.Warn("Health check failed", zap.String("dependency", c.name), zap.Error(err))
				results[c.name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[c.name] = "ok"
		}

		return apphttp.WriteJSON(w, status, map[string]any{
			"status": http.StatusText(status),
			"checks": results,
		})
	})
}
