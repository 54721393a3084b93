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

	api "github.com/mind-engage/mindengage-quiz/internal/api/http"
	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	"github.com/mind-engage/mindengage-quiz/internal/auth"
	"github.com/mind-engage/mindengage-quiz/internal/cache"
	"github.com/mind-engage/mindengage-quiz/internal/config"
	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/enrollment"
	"github.com/mind-engage/mindengage-quiz/internal/events"
	"github.com/mind-engage/mindengage-quiz/internal/messaging"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()

	// --- Quiz store (optionally behind Redis) ---
	var quizzes quiz.Store = quiz.NewSQLStore(dbh)
	var rdb *cache.RedisClient
	if cfg.RedisAddr != "" {
		rdb, err = cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		quizzes = quiz.NewCachedStore(quizzes, rdb, cfg.QuizCacheTTL)
		log.Printf("quiz cache enabled (redis=%s ttl=%s)", cfg.RedisAddr, cfg.QuizCacheTTL)
	}

	roster := enrollment.NewSQLRoster(dbh)
	svc := attempt.NewService(quizzes, attempt.NewSQLLedger(dbh), roster)

	// --- Result feed: event_log outbox, plus RabbitMQ when configured ---
	outbox := events.NewEventRepo(dbh, cfg.SiteID)
	notifiers := events.Multi{outbox}
	var mq *messaging.RabbitMQClient
	if cfg.RabbitMQURL != "" {
		mq, err = messaging.NewRabbitMQClient(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		defer mq.Close()
		notifiers = append(notifiers, events.NewQueueNotifier(mq, cfg.EventQueue))
		log.Printf("publishing results to queue %s", cfg.EventQueue)
	}

	// --- Auth (local JWT) ---
	authSvc := auth.NewAuthService(cfg.HMACSecret)
	users := auth.NewUserStore(dbh)
	if created, err := users.EnsureAdmin(ctx, cfg.AdminUser, cfg.AdminPassword); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	} else if created {
		log.Printf("created admin user %q", cfg.AdminUser)
	}

	deps := api.Deps{
		Auth:     authSvc,
		Quizzes:  quizzes,
		Attempts: svc,
		Roster:   roster,
		Notifier: events.Logging(notifiers),
		Events:   outbox,

		// the stored role wins over the token; offline mode tolerates tokens
		// for subjects that were never stored locally
		AttachRole: auth.AttachRoleFromDB(users, cfg.Mode == config.ModeOffline),

		Ready: func(ctx context.Context) error {
			if err := dbh.PingContext(ctx); err != nil {
				return err
			}
			if rdb != nil {
				if err := rdb.Ping(ctx); err != nil {
					return err
				}
			}
			if mq != nil && !mq.Healthy() {
				return errors.New("rabbitmq connection closed")
			}
			return nil
		},

		CORSOrigins:    cfg.CORSOrigins(),
		RequestTimeout: cfg.RequestTimeout,
	}
	if cfg.EnableLocalAuth {
		deps.Users = users
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("listening on %s (mode=%s, db=%s, site=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver, cfg.SiteID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Printf("bye")
}
