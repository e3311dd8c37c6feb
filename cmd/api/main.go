package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classtrack/internal/attendance"
	"classtrack/internal/auth"
	"classtrack/internal/config"
	"classtrack/internal/course"
	"classtrack/internal/handler"
	"classtrack/internal/httpmiddleware"
	"classtrack/internal/logging"
	"classtrack/internal/mailer"
	"classtrack/internal/metrics"
	"classtrack/internal/observability"
	"classtrack/internal/reminder"
	"classtrack/internal/scheduler"
	"classtrack/internal/store"
	"classtrack/internal/user"
)

func main() {
	cfg := config.Load()

	logg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logg.Closer()
	log := logg.Sugar

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "classtrack-api")
	if err != nil {
		log.Warnw("sentry init failed", "err", err)
	}
	defer flush()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.Fatalw("http server failed", "err", err)
	}
}

func runHTTP(cfg config.App, log *zap.SugaredLogger) error {
	db, err := store.NewDB(cfg.DatabaseURL, store.DBOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db.Client); err != nil {
		return err
	}

	redisClient := store.NewRedis(store.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	userRepo := user.NewRepository(db.Client)
	courseRepo := course.NewRepository(db.Client)
	attRepo := attendance.NewRepository(db.Client)
	remRepo := reminder.NewRepository(db.Client)

	courseSvc := course.NewService(courseRepo)
	ledger := attendance.NewService(attRepo, courseSvc)
	remSvc := reminder.NewService(remRepo, courseSvc)
	userSvc := user.NewService(userRepo)

	var mail mailer.Mailer
	if cfg.SendgridAPIKey != "" {
		mail = mailer.NewSendgrid(cfg.SendgridAPIKey, cfg.FromName, cfg.FromEmail)
		log.Infow("sendgrid mailer configured", "from", cfg.FromEmail)
	} else {
		mail = mailer.NewConsole(log)
		log.Infow("SENDGRID_API_KEY not set, using console mailer")
	}

	locker := scheduler.NewRedisLocker(redisClient.Client, cfg.SchedulerLockTTL)
	sched := scheduler.New(scheduler.NewZoneTable(), userRepo, remRepo, mail, locker, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitBurst, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		t0 := time.Now()
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		if dbHealthy {
			metrics.ObserveDBPing(time.Since(t0))
		}
		redisHealthy := redisClient.Healthy(c.Request.Context())
		status := http.StatusOK
		if !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "db": dbHealthy, "redis": redisHealthy})
	})

	h := handler.New(courseSvc, ledger, remSvc, userSvc, sched, log)
	h.Register(r,
		auth.SessionAuth(cfg.JWTSigningKey, cfg.JWTIssuer),
		auth.CronAuth(cfg.CronSecret),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("starting server", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("forced shutdown", "err", err)
	}
	log.Infow("server exited")
	return nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
