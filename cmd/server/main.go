package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	adminAuth "votegate/internal/admin/auth"
	adminHandler "votegate/internal/admin/handler"
	"votegate/internal/admin/lockout"
	adminService "votegate/internal/admin/service"
	"votegate/internal/biometric"
	"votegate/internal/ledger"
	"votegate/internal/ledger/cache"
	"votegate/internal/ledger/ethereum"
	"votegate/internal/ledger/memory"
	"votegate/internal/platform/config"
	"votegate/internal/platform/health"
	"votegate/internal/platform/httpserver"
	"votegate/internal/platform/kafka"
	"votegate/internal/platform/kafka/producer"
	"votegate/internal/platform/logger"
	"votegate/internal/platform/redis"
	"votegate/internal/platform/tracer"
	registrationHandler "votegate/internal/registration/handler"
	registrationService "votegate/internal/registration/service"
	httptransport "votegate/internal/transport/http"
	votingHandler "votegate/internal/voting/handler"
	votingMetrics "votegate/internal/voting/metrics"
	votingService "votegate/internal/voting/service"
	"votegate/internal/voting/session"
	sessionStore "votegate/internal/voting/store"
	"votegate/internal/voting/workers/cleanup"
	"votegate/pkg/platform/audit"
	auditKafka "votegate/pkg/platform/audit/kafka"
	auditMetrics "votegate/pkg/platform/audit/metrics"
	"votegate/pkg/platform/audit/publisher"
	auditMemory "votegate/pkg/platform/audit/store/memory"
	"votegate/pkg/platform/circuit"
	"votegate/pkg/platform/middleware/request"
)

// main wires dependencies and runs the HTTP server and background workers
// until SIGINT or SIGTERM. Business logic lives in internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("votegate stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

type closers []func()

func (c closers) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	log.Info("initializing votegate",
		"addr", cfg.Server.Addr,
		"environment", cfg.Server.Environment,
		"ledger_backend", cfg.Ledger.Backend,
	)

	var cleanupFns closers
	defer cleanupFns.closeAll()

	tr := tracer.NewOTel()
	healthHandler := health.New(cfg.Server.Environment)

	// Ledger, behind the roster cache.
	backing, closeLedger, err := buildLedger(ctx, cfg.Ledger, log, tr)
	if err != nil {
		return err
	}
	cleanupFns = append(cleanupFns, closeLedger)
	healthHandler.RegisterCheck("ledger", func(ctx context.Context) error {
		_, err := backing.ElectionState(ctx)
		return err
	})

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var rosterStore cache.Store = cache.NewMemoryStore(nil)
	if redisClient != nil {
		rosterStore = cache.NewRedisStore(redisClient.Client)
		cleanupFns = append(cleanupFns, func() { _ = redisClient.Close() })
		healthHandler.RegisterOptional("redis", redisClient.Health)
		log.Info("roster cache backed by redis")
	}
	roster := cache.New(backing, rosterStore,
		cache.WithTTL(cfg.Ledger.RosterCacheTTL),
		cache.WithLogger(log),
		cache.WithMetrics(cache.NewMetrics()),
	)

	// Biometric service, behind the circuit breaker.
	bio := biometric.NewResilient(
		biometric.NewHTTPClient(cfg.Biometric.URL, cfg.Biometric.Timeout),
		biometric.WithLogger(log),
		biometric.WithTracer(tr),
		biometric.WithMetrics(biometric.NewMetrics()),
		biometric.WithBreaker(cfg.Biometric.BreakerFailures, cfg.Biometric.BreakerCooldown),
	)
	healthHandler.RegisterCheck("biometric", func(context.Context) error {
		if bio.Breaker().State() == circuit.StateOpen {
			return errors.New("circuit open")
		}
		return nil
	})

	// Audit trail: Kafka when brokers are configured, otherwise in memory.
	var auditStore audit.Store = auditMemory.NewInMemoryStore()
	if cfg.Kafka.Brokers != "" {
		p, err := producer.New(producer.DefaultConfig(cfg.Kafka.Brokers), log)
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		cleanupFns = append(cleanupFns, func() { p.Close(5 * time.Second) })
		auditStore = auditKafka.NewStore(p, cfg.Kafka.AuditTopic)
		healthHandler.RegisterOptional("kafka", kafka.NewHealthChecker(cfg.Kafka.Brokers).Check)
		log.Info("audit events published to kafka", "topic", cfg.Kafka.AuditTopic)
	}
	pub := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(1024),
		publisher.WithPublisherLogger(log),
		publisher.WithMetrics(auditMetrics.New()),
	)
	cleanupFns = append(cleanupFns, pub.Close)
	auditLog := audit.NewLogger(log, pub)

	// Voting sessions.
	vm := votingMetrics.New()
	sessions := sessionStore.New()
	voting, err := votingService.New(sessions, roster, bio, votingService.Config{
		Session: session.Config{
			FaceMatchThreshold: cfg.Biometric.FaceMatchThreshold,
			ScannerPort:        cfg.Biometric.ScannerPort,
		},
		BiometricAttemptsPerMinute: cfg.Session.BiometricAttemptsPerMinute,
	},
		votingService.WithLogger(log),
		votingService.WithTracer(tr),
		votingService.WithMetrics(vm),
		votingService.WithAuditLogger(auditLog),
	)
	if err != nil {
		return fmt.Errorf("voting service: %w", err)
	}
	sweeper, err := cleanup.New(sessions,
		cleanup.WithCleanupInterval(cfg.Session.CleanupInterval),
		cleanup.WithIdleTTL(cfg.Session.IdleTTL),
		cleanup.WithCleanupLogger(log),
		cleanup.WithMetrics(vm),
	)
	if err != nil {
		return fmt.Errorf("session cleanup: %w", err)
	}

	registration, err := registrationService.New(bio, roster, cfg.Biometric.ScannerPort,
		registrationService.WithLogger(log),
		registrationService.WithAuditLogger(auditLog),
	)
	if err != nil {
		return fmt.Errorf("registration service: %w", err)
	}

	modules := []httptransport.RouteRegistrar{
		votingHandler.New(voting, log, cfg.Server.MaxUploadBytes),
		registrationHandler.New(registration, log, cfg.Server.MaxUploadBytes),
	}
	if cfg.AdminEnabled() {
		authenticator, err := adminAuth.New(cfg.Admin.PasswordHash, cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
		if err != nil {
			return fmt.Errorf("admin auth: %w", err)
		}
		var lockoutStore lockout.Store = lockout.NewInMemoryStore()
		if redisClient != nil {
			lockoutStore = lockout.NewRedisStore(redisClient.Client)
		}
		guard, err := lockout.New(lockoutStore,
			lockout.WithConfig(lockout.Config{
				MaxAttempts:  cfg.Admin.MaxLoginAttempts,
				Window:       cfg.Admin.LoginLockout,
				LockDuration: cfg.Admin.LoginLockout,
			}),
			lockout.WithLogger(log),
			lockout.WithAuditLogger(auditLog),
		)
		if err != nil {
			return fmt.Errorf("admin lockout: %w", err)
		}
		admin, err := adminService.New(roster, bio, authenticator,
			adminService.WithLogger(log),
			adminService.WithTracer(tr),
			adminService.WithAuditLogger(auditLog),
			adminService.WithLockout(guard),
		)
		if err != nil {
			return fmt.Errorf("admin service: %w", err)
		}
		modules = append(modules, adminHandler.New(admin, adminAuth.NewMiddlewareAdapter(authenticator), log))
	} else {
		log.Warn("admin routes disabled: ADMIN_PASSWORD_HASH and ADMIN_JWT_SECRET not set")
	}

	router := httptransport.NewRouter(httptransport.Config{
		MaxBodyBytes:   cfg.Server.MaxUploadBytes + 1<<20,
		RequestTimeout: cfg.Biometric.Timeout + 20*time.Second,
		TrustedProxies: cfg.Server.TrustedProxies,
	}, log, request.NewMetrics(), healthHandler, modules...)
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := sweeper.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if redisClient != nil {
		g.Go(func() error {
			redisClient.StartPoolStats(gctx, 15*time.Second)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildLedger(ctx context.Context, cfg config.Ledger, log *slog.Logger, tr tracer.Tracer) (ledger.Ledger, func(), error) {
	switch cfg.Backend {
	case ledger.BackendEthereum:
		client, err := ethereum.Dial(ctx, ethereum.Config{
			RPCURL:          cfg.RPCURL,
			ContractAddress: cfg.ContractAddress,
			ChainID:         cfg.ChainID,
			PrivateKey:      cfg.PrivateKey,
		}, ethereum.WithLogger(log), ethereum.WithTracer(tr))
		if err != nil {
			return nil, nil, fmt.Errorf("ethereum ledger: %w", err)
		}
		log.Info("ledger connected", "rpc", cfg.RPCURL, "contract", cfg.ContractAddress, "chain_id", cfg.ChainID)
		return client, client.Close, nil
	default:
		if cfg.SeedFile == "" {
			log.Warn("memory ledger started empty; set LEDGER_SEED_FILE to load fixtures")
			return memory.New(), func() {}, nil
		}
		l, err := memory.LoadFile(cfg.SeedFile)
		if err != nil {
			return nil, nil, fmt.Errorf("memory ledger: %w", err)
		}
		log.Info("memory ledger seeded", "file", cfg.SeedFile)
		return l, func() {}, nil
	}
}
