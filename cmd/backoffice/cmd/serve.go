package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gestion-comercial/backoffice/internal/api"
	"github.com/gestion-comercial/backoffice/internal/api/handler"
	"github.com/gestion-comercial/backoffice/internal/api/policy"
	"github.com/gestion-comercial/backoffice/internal/core/ports"
	"github.com/gestion-comercial/backoffice/internal/core/service"
	"github.com/gestion-comercial/backoffice/internal/infrastructure/db/redis"
	"github.com/gestion-comercial/backoffice/internal/infrastructure/queue"
	"github.com/gestion-comercial/backoffice/internal/infrastructure/ratelimit"
	"github.com/gestion-comercial/backoffice/internal/infrastructure/security"
	"github.com/gestion-comercial/backoffice/internal/infrastructure/session"
	"github.com/gestion-comercial/backoffice/internal/pkg/config"
)

const shutdownTimeout = 10 * time.Second

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the REST and browser surfaces with authentication and route admission.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		b, err := openBackends(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = b.close(context.Background()) }()

		if autoMigrate {
			if err := b.prepare(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
		}

		readiness := map[string]handler.Pinger{"store": b.ping}

		limiter, closeLimiter, err := newLimiter(ctx, cfg, readiness)
		if err != nil {
			return err
		}
		defer func() { _ = closeLimiter() }()

		// The audit context is cancelled only after the server has shut
		// down; Wait then blocks until the queued events are written and
		// before the backends close.
		auditCtx, stopAudit := context.WithCancel(context.Background())
		dispatcher := queue.NewDispatcher(cfg.AuditWorkers, b.events, log)
		dispatcher.Start(auditCtx)
		defer func() {
			stopAudit()
			dispatcher.Wait()
		}()

		codec, err := security.NewJWTCodec(cfg.JWT.Secret, cfg.JWT.Expiration, security.WithIssuer(cfg.JWT.Issuer))
		if err != nil {
			return err
		}
		verifier, err := security.NewBcryptVerifier(0)
		if err != nil {
			return err
		}

		authService := service.NewAuthService(b.credentials, codec, limiter, verifier, log,
			service.WithEventPublisher(dispatcher))

		apiPolicy, err := policy.NewAPIEnforcer()
		if err != nil {
			return err
		}
		webPolicy, err := policy.NewWebEnforcer()
		if err != nil {
			return err
		}

		e, err := api.NewRouter(api.Dependencies{
			Log:                log,
			AuthService:        authService,
			Codec:              codec,
			Sessions:           session.NewStore(cfg.Session.MaxEntries, cfg.Session.TTL),
			APIPolicy:          apiPolicy,
			WebPolicy:          webPolicy,
			Readiness:          readiness,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			SecureCookies:      cfg.IsProduction(),
		})
		if err != nil {
			return err
		}

		serverErrors := make(chan error, 1)
		go func() {
			log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Str("rate_limit", cfg.RateLimit.Backend).Msg("server listening")
			serverErrors <- e.Start(":" + cfg.Port)
		}()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
			log.Info().Msg("shutting down gracefully")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			_ = e.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info().Msg("server stopped")
		return nil
	},
}

// newLimiter builds the rate limiter selected by RATE_LIMIT_BACKEND. The Redis
// backend also joins the readiness checks.
func newLimiter(ctx context.Context, cfg *config.Config, readiness map[string]handler.Pinger) (ports.RateLimiter, func() error, error) {
	rl := cfg.RateLimit
	if rl.Backend == config.RateLimitRedis {
		client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, nil, err
		}
		readiness["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		return redis.NewLoginAttemptLimiter(client, rl.MaxAttempts, rl.BlockDuration, rl.Expiry, log), client.Close, nil
	}

	limiter := ratelimit.NewMemoryLimiter(ratelimit.Config{
		MaxAttempts:   rl.MaxAttempts,
		BlockDuration: rl.BlockDuration,
		Expiry:        rl.Expiry,
		SweepInterval: rl.SweepInterval,
	}, log)
	limiter.Start(ctx)
	return limiter, func() error { return nil }, nil
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "Apply schema migrations before serving")
	rootCmd.AddCommand(serveCmd)
}
