package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"classtrack/internal/config"
	"classtrack/internal/logging"
	"classtrack/internal/mailer"
	"classtrack/internal/observability"
	"classtrack/internal/reminder"
	"classtrack/internal/scheduler"
	"classtrack/internal/store"
	"classtrack/internal/user"
)

// Worker runs one reminder scheduler pass at the top of every hour, for
// deployments without an external cron caller hitting the HTTP trigger.
func main() {
	cfg := config.Load()

	logg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logg.Closer()
	log := logg.Sugar

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "classtrack-worker")
	if err != nil {
		log.Warnw("sentry init failed", "err", err)
	}
	defer flush()

	db, err := store.NewDB(cfg.DatabaseURL, store.DBOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalw("db connect failed", "err", err)
	}
	defer db.Close()

	if err := store.Migrate(db.Client); err != nil {
		log.Fatalw("migrate failed", "err", err)
	}

	redisClient := store.NewRedis(store.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	var mail mailer.Mailer
	if cfg.SendgridAPIKey != "" {
		mail = mailer.NewSendgrid(cfg.SendgridAPIKey, cfg.FromName, cfg.FromEmail)
	} else {
		mail = mailer.NewConsole(log)
		log.Infow("SENDGRID_API_KEY not set, using console mailer")
	}

	sched := scheduler.New(
		scheduler.NewZoneTable(),
		user.NewRepository(db.Client),
		reminder.NewRepository(db.Client),
		mail,
		scheduler.NewRedisLocker(redisClient.Client, cfg.SchedulerLockTTL),
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := cron.New()
	_, err = c.AddFunc("0 * * * *", func() {
		sum, err := sched.Run(ctx)
		if err != nil {
			log.Errorw("scheduler pass failed", "err", err)
			observability.CaptureErr(err)
			return
		}
		log.Infow("scheduler pass done",
			"utcHour", sum.UTCHour,
			"timezones", sum.TimezonesProcessed,
			"users", sum.UsersProcessed,
			"sent", sum.EmailsSent,
			"deleted", sum.RemindersDeleted,
			"errors", sum.Errors,
			"skipped", sum.Skipped,
		)
	})
	if err != nil {
		log.Fatalw("cron schedule failed", "err", err)
	}

	c.Start()
	log.Infow("worker started, reminder pass runs at minute 0 of every hour")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Infow("shutdown signal received")

	cancel()
	<-c.Stop().Done()
	log.Infow("worker stopped")
}
