package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"campusvoice/internal/audit"
	"campusvoice/internal/auth"
	authhandler "campusvoice/internal/auth/handler"
	"campusvoice/internal/evidence"
	evidencehandler "campusvoice/internal/evidence/handler"
	"campusvoice/internal/feed"
	"campusvoice/internal/grievance"
	grievancehandler "campusvoice/internal/grievance/handler"
	"campusvoice/internal/identity"
	"campusvoice/internal/jwttoken"
	"campusvoice/internal/normalize"
	"campusvoice/internal/platform/config"
	"campusvoice/internal/platform/httpserver"
	"campusvoice/internal/platform/logger"
	"campusvoice/internal/platform/metrics"
	platformredis "campusvoice/internal/platform/redis"
	"campusvoice/internal/ratelimit"
	"campusvoice/internal/stats"
	statshandler "campusvoice/internal/stats/handler"
	"campusvoice/internal/submission"
	submissionhandler "campusvoice/internal/submission/handler"
	httptransport "campusvoice/internal/transport/http"
)

// submissionLimit caps confirms per student per window.
const (
	submissionLimit  = 5
	submissionWindow = time.Minute
)

// main wires the dependency graph and supervises the long-running pieces:
// HTTP server, audit worker, feed hub and its broker pump. Business logic
// lives in the internal services.
func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistence. Without a Postgres DSN everything runs on memory stores,
	// which is enough for local development.
	var db *sql.DB
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("failed to ping postgres", "error", err)
			os.Exit(1)
		}
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var (
		identityStore  identity.Store
		credStore      auth.Store
		grievanceStore grievance.Store
		auditStore     audit.Store
		draftStore     submission.Store
	)
	if db != nil {
		identityStore = identity.NewPostgresStore(db)
		credStore = auth.NewPostgresStore(db)
		grievanceStore = grievance.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
	} else {
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
		identityStore = identity.NewMemoryStore()
		credStore = auth.NewMemoryStore()
		grievanceStore = grievance.NewMemoryStore()
		auditStore = audit.NewMemoryStore()
	}
	if redisClient != nil {
		draftStore = submission.NewRedisStore(redisClient.Client, cfg.DraftTTL)
	} else {
		draftStore = submission.NewMemoryStore()
	}

	// Identity, tokens, auth.
	directory := identity.NewService(identityStore)
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	authService := auth.NewService(credStore, directory, jwtService, cfg.TokenTTL)

	// Text normalization. Without an API key the rewriter is nil and every
	// submission passes through unchanged.
	var rewriter normalize.Rewriter
	if cfg.Gemini.APIKey != "" {
		gem, err := normalize.NewGeminiRewriter(ctx, cfg.Gemini)
		if err != nil {
			log.Error("failed to build gemini client", "error", err)
			os.Exit(1)
		}
		rewriter = gem
	} else {
		log.Warn("GEMINI_API_KEY not set, submissions will not be normalized")
	}
	normalizer := normalize.NewService(rewriter, log, m)

	// Audit trail.
	auditor := audit.NewService(log)
	var auditPublisher audit.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		if err != nil {
			log.Error("failed to build kafka publisher", "error", err)
			os.Exit(1)
		}
		defer kp.Close()
		auditPublisher = kp
	}
	auditWorker := audit.NewWorker(auditStore, auditPublisher, auditor.Inbox(), log)

	// Live feed.
	hub := feed.NewHub(log, m)
	var broker feed.Broker
	if redisClient != nil {
		broker = feed.NewRedisBroker(redisClient.Client, log)
	} else {
		broker = feed.NewLocalBroker()
	}
	feedService := feed.NewService(broker, hub, log)

	// Core domain services.
	grievanceService := grievance.NewService(grievanceStore, directory, auditor, feedService, m, log)
	limiter := ratelimit.New(submissionLimit, submissionWindow)
	submissionService := submission.NewService(draftStore, normalizer, directory, grievanceService, limiter, m, log)
	evidenceService := evidence.NewService(cfg.S3)
	statsService := stats.NewService(grievanceStore, directory)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:     log,
		Validator:  jwtService,
		Auth:       authhandler.New(authService, directory, log),
		Submission: submissionhandler.New(submissionService, log),
		Grievance:  grievancehandler.New(grievanceService, log),
		Evidence:   evidencehandler.New(evidenceService, log),
		Stats:      statshandler.New(statsService, log),
		Feed:       feed.NewHandler(hub, directory, log),
		Health: func() error {
			if db != nil {
				if err := db.PingContext(context.Background()); err != nil {
					return err
				}
			}
			if redisClient != nil {
				return redisClient.Health(context.Background())
			}
			return nil
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		return feedService.Run(ctx)
	})
	g.Go(func() error {
		return auditWorker.Run(ctx)
	})
	g.Go(func() error {
		log.Info("campusvoice listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("campusvoice stopped")
}
