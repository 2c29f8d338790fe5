package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/xenking/order-intake/internal/auth"
	"github.com/xenking/order-intake/internal/domain/order"
	"github.com/xenking/order-intake/internal/handler"
	"github.com/xenking/order-intake/internal/mail"
	"github.com/xenking/order-intake/internal/storage/dynamo"
	"github.com/xenking/order-intake/internal/storage/postgres"
	"github.com/xenking/order-intake/pkg/health"
	"github.com/xenking/order-intake/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles
// graceful shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage.Driver),
	)

	healthSvc := health.New()

	// Storage backend: repositories plus a readiness check.
	orders, notifications, closeStorage, err := buildStorage(ctx, cfg, healthSvc)
	if err != nil {
		return err
	}
	defer closeStorage()

	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc-pause", time.Second, health.GCMaxPauseCheck(500*time.Millisecond))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Mail relay.
	sender, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.User,
		Password: cfg.Mail.Pass,
		FromName: cfg.Mail.FromName,
		Insecure: cfg.Mail.Insecure,
	})
	if err != nil {
		return errors.Wrap(err, "create mail sender")
	}

	// Domain service and HTTP handlers.
	verifier := auth.NewVerifier([]byte(cfg.Auth.JWTSecret))
	orderService := order.NewService(orders, notifications, mail.NewConfirmer(sender))
	h, err := handler.New(verifier, orderService, m.MeterProvider().Meter("order-intake"))
	if err != nil {
		return errors.Wrap(err, "create handler")
	}

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	instrumented := otelhttp.NewHandler(mux, "order-intake",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(instrumented,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// buildStorage constructs the configured storage backend, registers its
// readiness check, and returns the repositories plus a close func.
func buildStorage(
	ctx context.Context,
	cfg *Config,
	healthSvc *health.Health,
) (order.Repository, order.NotificationRepository, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		return postgres.NewOrderRepository(pool, cfg.Storage.OrdersTable),
			postgres.NewNotificationRepository(pool, cfg.Storage.NotificationsTable),
			pool.Close, nil

	case "dynamodb":
		client, err := dynamo.NewClient(ctx, dynamo.Config{
			Region:   cfg.Storage.AWSRegion,
			Endpoint: cfg.Storage.DynamoEndpoint,
		})
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, "create dynamodb client")
		}
		healthSvc.AddReadinessCheck("dynamodb", 5*time.Second, func(ctx context.Context) error {
			return dynamo.Ping(ctx, client)
		})
		return dynamo.NewOrderRepository(client, cfg.Storage.OrdersTable),
			dynamo.NewNotificationRepository(client, cfg.Storage.NotificationsTable),
			func() {}, nil

	default:
		return nil, nil, nil, errors.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
