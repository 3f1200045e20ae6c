package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"navshell/internal/audit"
	"navshell/internal/features"
	jwttoken "navshell/internal/jwt_token"
	navmetrics "navshell/internal/navigation/metrics"
	"navshell/internal/platform/config"
	"navshell/internal/platform/httpserver"
	"navshell/internal/platform/logger"
	"navshell/internal/platform/metrics"
	"navshell/internal/platform/middleware"
	"navshell/internal/ratelimit"
	redisclient "navshell/internal/platform/redis"
	"navshell/internal/session/bus"
	sessionHandler "navshell/internal/session/handler"
	sessionService "navshell/internal/session/service"
	sessionStore "navshell/internal/session/store"
	"navshell/internal/shell"
	shellHandler "navshell/internal/shell/handler"
	"navshell/pkg/platform/httputil"
)

const auditBuffer = 1024

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.Load()
	log := logger.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("navshell stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	nm := navmetrics.New(reg)

	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rc != nil {
		defer rc.Close()
	}
	roleBus, limiter := buildRedisBacked(rc, cfg.Redis, log)

	auditStore, closeAudit, err := buildAuditStore(ctx, cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer closeAudit()
	inbox := make(chan audit.Event, auditBuffer)
	auditor := audit.NewPublisher(auditStore, audit.WithInbox(inbox), audit.WithLogger(log))
	worker := audit.NewWorker(auditStore, inbox, log)

	users, err := sessionStore.NewSeededUserStore(sessionStore.DevUsers(), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	sessions := sessionStore.NewInMemorySessionStore()
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.TokenIssuer, "navshell-app")

	sessionSvc := sessionService.New(users, sessions, roleBus, jwtService,
		sessionService.WithLogger(log),
		sessionService.WithAuditPublisher(auditor),
		sessionService.WithMetrics(m),
		sessionService.WithTokenTTL(cfg.TokenTTL),
	)

	extra, err := features.FromManifests(cfg.Navigation.Features)
	if err != nil {
		return err
	}
	manager := shell.New(ctx, append(features.Catalog(), extra...),
		shell.WithLogger(log),
		shell.WithPriority(cfg.Navigation.Priority),
		shell.WithBreakpoint(cfg.Navigation.WideBreakpoint),
		shell.WithNavigationMetrics(nm),
		shell.WithMetrics(m),
		shell.WithAuditPublisher(auditor),
	)

	requireAuth := middleware.RequireAuth(jwttoken.NewJWTServiceAdapter(jwtService), sessionSvc, log)

	throttle := ratelimit.New(limiter, cfg.LoginLimit.Limit, cfg.LoginLimit.Window, log, ratelimit.WithMetrics(m))

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.LatencyMiddleware(m))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if rc != nil {
			if err := rc.Health(r.Context()); err != nil {
				log.WarnContext(r.Context(), "health check failed", "dependency", "redis", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "redis": "unreachable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": manager.Sessions()})
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		sessionHandler.New(sessionSvc, manager, log, requireAuth, cfg.TokenTTL, throttle.Login).Register(r)
	})
	shellHandler.New(sessionSvc, manager, log, requireAuth).Register(r)

	// Closing the manager ends every /nav/stream, so Shutdown is not held
	// open by streaming clients.
	srv := httpserver.New(cfg.Addr, r, manager.Close)
	defer manager.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting navshell", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return manager.Run(gctx, roleBus)
	})
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildRedisBacked shares Redis between instances for the role bus and the
// login throttle when REDIS_URL is set; otherwise both stay in process.
func buildRedisBacked(rc *redisclient.Client, cfg config.RedisConfig, log *slog.Logger) (bus.Bus, ratelimit.Limiter) {
	if rc == nil {
		log.Info("role bus and login throttle in memory")
		return bus.NewMemory(), ratelimit.NewInMemoryStore()
	}
	log.Info("role bus and login throttle on redis", "channel", cfg.Channel)
	return bus.NewRedis(rc.Client, cfg.Channel, log), ratelimit.NewRedisStore(rc.Client, "navshell:ratelimit:")
}

// buildAuditStore streams audit events to Kafka when brokers are configured.
func buildAuditStore(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) (audit.Store, func(), error) {
	if len(cfg.Brokers) == 0 {
		log.Info("audit events kept in memory")
		return audit.NewInMemoryStore(), func() {}, nil
	}
	store, err := audit.NewKafkaStore(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, nil, err
	}
	if err := store.EnsureTopic(ctx, cfg.Partitions, cfg.ReplicationFactor); err != nil {
		store.Close()
		return nil, nil, err
	}
	log.Info("audit events streamed to kafka", "topic", cfg.Topic)
	return store, store.Close, nil
}
