package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/formrelay/relay/internal/api"
	"github.com/formrelay/relay/internal/api/handlers"
	mw "github.com/formrelay/relay/internal/api/middleware"
	"github.com/formrelay/relay/internal/mirror"
	"github.com/formrelay/relay/internal/notify"
	"github.com/formrelay/relay/internal/services"
	"github.com/formrelay/relay/pkg/config"
	"github.com/formrelay/relay/pkg/logger"
	"github.com/formrelay/relay/pkg/telemetry"
)

// @title           formrelay API
// @version         1.0
// @description     Relays contact form submissions to a Telegram chat.

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and an admin token from cmd/token.

const mirrorQueueSize = 64

func main() {
	cfg := config.MustLoad()

	baseLog, syncLog, err := logger.Init(cfg.LogLevel, cfg.LogFormat, logger.WithFile(cfg.LogFile))
	if err != nil {
		panic(err)
	}
	defer syncLog()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.TracingEnabled {
		shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{ServiceName: "formrelay-api", Exporter: cfg.TracingExporter})
		if err != nil {
			baseLog.Fatal("tracing setup failed", zap.Error(err))
		}
		defer func() {
			tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(tctx)
		}()
	}

	var queue *asynq.Client
	if cfg.RedisAddr != "" {
		queue = connectQueue(ctx, cfg, baseLog)
		if queue != nil {
			defer queue.Close()
		}
	}

	log := baseLog
	if cfg.MirrorEnabled {
		buffered := newMirror(cfg, queue, baseLog.Named("mirror"))
		defer func() {
			mctx, cancel := context.WithTimeout(context.Background(), cfg.SendTimeout)
			defer cancel()
			_ = buffered.Close(mctx)
		}()
		level, err := zapcore.ParseLevel(cfg.MirrorLevel)
		if err != nil {
			baseLog.Fatal("invalid mirror level", zap.Error(err))
		}
		core := mirror.NewCore(buffered, level, cfg.MirrorRPS)
		log = baseLog.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, core)
		}))
	}

	log.Info("starting formrelay",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
		zap.Bool("mirror", cfg.MirrorEnabled),
		zap.Bool("admin_auth", cfg.AdminJWTSecret != ""),
	)
	if cfg.CORSPermissive {
		log.Warn("CORS_PERMISSIVE is set: every origin may call /submit")
	}
	if cfg.AdminJWTSecret == "" && cfg.AppEnv == "production" {
		log.Warn("ADMIN_JWT_SECRET not set: /test and /logs are public")
	}

	sender := notify.NewTelegramSender(notify.TelegramOptions{
		APIURL:     cfg.TelegramAPIURL,
		Token:      cfg.TelegramToken,
		Timeout:    cfg.SendTimeout,
		MaxRetries: cfg.SendMaxRetries,
		Logger:     log.Named("telegram"),
	})
	svc := services.NewNotificationService(sender, cfg.TelegramChatID, log)

	limiter := mw.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	if err := limiter.TrustProxies(cfg.TrustedProxies); err != nil {
		log.Fatal("invalid TRUSTED_PROXIES", zap.Error(err))
	}
	go limiter.Run(ctx, time.Minute)

	var handler http.Handler = api.NewRouter(api.Dependencies{
		Logger: log,
		CORS: mw.CORSPolicy{
			AllowedOrigins:    cfg.CORSAllowedOrigins,
			AllowedSubstrings: cfg.CORSAllowedSubstrings,
			Permissive:        cfg.CORSPermissive,
		},
		Limiter:       limiter,
		MaxInFlight:   cfg.MaxInFlight,
		AdminSecret:   []byte(cfg.AdminJWTSecret),
		SubmitHandler: handlers.NewSubmitHandler(svc, cfg.MaxBodyBytes, log),
		AdminHandler:  handlers.NewAdminHandler(svc, cfg.LogFile, log),
	})
	if cfg.TracingEnabled {
		handler = otelhttp.NewHandler(handler, "formrelay")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.SendTimeout + 30*time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}

// connectQueue returns an asynq client when Redis answers, or nil so the
// mirror falls back to direct delivery.
func connectQueue(ctx context.Context, cfg *config.Config, log *zap.Logger) *asynq.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, mirror will deliver directly", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		return nil
	}
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
}

// newMirror builds the sink chain. log is the un-mirrored logger.
func newMirror(cfg *config.Config, queue *asynq.Client, log *zap.Logger) *mirror.Buffered {
	var sink mirror.Sink
	if queue != nil {
		sink = mirror.NewQueueSink(queue, cfg.TelegramChatID)
		log.Info("log mirror enabled", zap.String("via", "queue"))
	} else {
		sender := notify.NewTelegramSender(notify.TelegramOptions{
			APIURL:  cfg.TelegramAPIURL,
			Token:   cfg.TelegramToken,
			Timeout: cfg.SendTimeout,
			Logger:  log,
		})
		sink = mirror.NewDirectSink(sender, cfg.TelegramChatID)
		log.Info("log mirror enabled", zap.String("via", "direct"))
	}
	return mirror.NewBuffered(sink, mirrorQueueSize, cfg.SendTimeout, log)
}
