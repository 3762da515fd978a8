package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/agency-leads/internal/config"
	"github.com/xavierca1/agency-leads/internal/infra/cache"
	"github.com/xavierca1/agency-leads/internal/infra/database"
	"github.com/xavierca1/agency-leads/internal/infra/http/handlers"
	"github.com/xavierca1/agency-leads/internal/infra/http/middleware"
	"github.com/xavierca1/agency-leads/internal/infra/integration/analytics"
	"github.com/xavierca1/agency-leads/internal/infra/integration/recaptcha"
	"github.com/xavierca1/agency-leads/internal/infra/integration/zoho"
	"github.com/xavierca1/agency-leads/internal/infra/mail"
	"github.com/xavierca1/agency-leads/internal/infra/queue"
	"github.com/xavierca1/agency-leads/internal/infra/worker"
	"github.com/xavierca1/agency-leads/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := config.InitLogger(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// 1. Storage
	db, err := database.NewDBConnection(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.ApplySchema {
		if err := database.ApplySchema(ctx, db); err != nil {
			return err
		}
	}

	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		rdb, err = cache.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			logger.Warn("redis unavailable, conversion tags read from postgres", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	var rabbitMQ *queue.RabbitMQ
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			logger.Warn("rabbitmq unavailable, conversions and alerts disabled", zap.Error(err))
			rabbitMQ = nil
		} else {
			defer rabbitMQ.Close()
		}
	}

	// 2. Repositories
	leadRepo := database.NewLeadRepository(db)
	integrationRepo := database.NewIntegrationRepository(db)
	newsletterRepo := database.NewNewsletterRepository(db)
	tagCache := cache.NewConversionTagCache(rdb, database.NewConversionTagRepository(db), cfg.Conversion.CacheTTL, logger)

	// 3. Partners
	zohoClient := zoho.NewClient(zoho.Config{
		ClientID:     cfg.Zoho.ClientID,
		ClientSecret: cfg.Zoho.ClientSecret,
		RefreshToken: cfg.Zoho.RefreshToken,
		AccountsURL:  cfg.Zoho.AccountsURL,
		APIURL:       cfg.Zoho.APIURL,
		DedupField:   cfg.Zoho.DedupField,
		Timeout:      cfg.Zoho.Timeout,
	}, logger)
	if !zohoClient.Configured() {
		logger.Warn("zoho credentials missing, every lead will be queued for retry")
	}
	captcha := recaptcha.NewClient(cfg.Recaptcha.Secret, cfg.Recaptcha.VerifyURL, cfg.Recaptcha.Timeout)
	ga := analytics.NewClient(cfg.Analytics.MeasurementID, cfg.Analytics.APISecret, cfg.Analytics.Endpoint, cfg.Analytics.Timeout, logger)
	mailer := mail.NewEmailSender(mail.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		User:     cfg.Mail.User,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		SalesTo:  cfg.Mail.SalesTo,
	}, logger)

	var producer usecase.QueueProducerInterface
	if rabbitMQ != nil {
		producer = queue.NewProducer(rabbitMQ.Ch)
	}

	// 4. Use cases
	forwarder := usecase.NewCRMForwarder(zohoClient, cfg.Zoho.Timeout)
	conversions := usecase.NewConversionReporter(producer, tagCache, cfg.Conversion.LookupTimeout, logger)
	if cfg.RabbitMQ.PublishTimeout > 0 {
		conversions.PublishTimeout = cfg.RabbitMQ.PublishTimeout
	}

	submitLeadUC := usecase.NewSubmitLeadUseCase(leadRepo, integrationRepo, forwarder, captcha, conversions, producer, logger)
	submitLeadUC.MinCaptchaScore = cfg.Recaptcha.MinScore
	if cfg.Retry.FirstRetryDelay > 0 {
		submitLeadUC.FirstRetryDelay = cfg.Retry.FirstRetryDelay
	}
	submitLeadUC.PublishTimeout = conversions.PublishTimeout

	newsletterUC := usecase.NewSubscribeNewsletterUseCase(newsletterRepo)
	adminUC := usecase.NewAdminUseCase(leadRepo, integrationRepo, newsletterRepo)
	retriesUC := usecase.NewProcessRetriesUseCase(leadRepo, integrationRepo, forwarder, cfg.Retry.BatchSize, cfg.Retry.MaxAttempts, logger)

	// 5. Workers
	retryWorker := worker.NewRetryWorker(retriesUC, cfg.Retry.Interval, logger)
	retryWorker.Observe = func(s usecase.RetrySummary) {
		middleware.RecordCRMPush("retried", s.Succeeded)
		middleware.RecordCRMPush("requeued", s.Requeued)
		middleware.RecordCRMPush("dead", s.Dead)
	}

	// 6. HTTP
	limiter := handlers.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	defer limiter.Stop()

	var rabbitConn *amqp.Connection
	if rabbitMQ != nil {
		rabbitConn = rabbitMQ.Conn
	}
	healthHandler := handlers.NewHealthHandler(db, rabbitConn, rdb, zohoClient.Configured())

	router := newRouter(routerDeps{
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AdminToken:     cfg.Admin.Token,
		Lead:           handlers.NewLeadHandler(submitLeadUC, logger),
		Newsletter:     handlers.NewNewsletterHandler(newsletterUC, logger),
		Admin:          handlers.NewAdminHandler(adminUC, logger),
		Health:         healthHandler,
		RateLimiter:    limiter,
	})
	if cfg.Admin.Token == "" {
		logger.Warn("admin.token not set, admin API is locked")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("agency-leads api listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
		defer cancel()
		logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		retryWorker.Start(gctx)
		return nil
	})

	if rabbitMQ != nil {
		eventWorker := queue.NewWorker(rabbitMQ.Ch, ga, mailer, logger)
		g.Go(func() error {
			// a dropped broker degrades /health; the API keeps accepting leads
			if err := eventWorker.Start(gctx, queue.QueueName); err != nil {
				logger.Error("lead event worker stopped", zap.Error(err))
			}
			return nil
		})
	}

	return g.Wait()
}
