package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/formrelay/relay/internal/notify"
	"github.com/formrelay/relay/internal/queue/tasks"
	"github.com/formrelay/relay/pkg/config"
	"github.com/formrelay/relay/pkg/logger"
)

func main() {
	cfg := config.MustLoad()
	// The worker only logs to stdout; it must never feed the mirror it drains.
	log, syncLog, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer syncLog()

	if cfg.RedisAddr == "" {
		log.Fatal("REDIS_ADDR is required for the worker")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = rdb.Ping(pingCtx).Err()
	cancel()
	_ = rdb.Close()
	if err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		},
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Logger:      log.Named("asynq").Sugar(),
		},
	)

	sender := notify.NewTelegramSender(notify.TelegramOptions{
		APIURL:     cfg.TelegramAPIURL,
		Token:      cfg.TelegramToken,
		Timeout:    cfg.SendTimeout,
		MaxRetries: cfg.SendMaxRetries,
		Logger:     log.Named("telegram"),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeMirrorDeliver, tasks.NewMirrorTaskHandler(sender, log).Handle)

	errCh := make(chan error, 1)
	go func() {
		log.Info("asynq worker starting", zap.Int("concurrency", cfg.WorkerConcurrency))
		if err := srv.Run(mux); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("worker stopped with error", zap.Error(err))
	}

	srv.Shutdown()
}
