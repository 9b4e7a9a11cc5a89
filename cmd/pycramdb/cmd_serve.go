package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pycramdb/messaging"
	"pycramdb/valuecache"
	"pycramdb/www"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the outbox drainer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve()
		},
	}
}

func (a *app) serve() error {
	cfg := a.cfg
	log := logrus.WithField("component", "serve")

	db, err := a.openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	log.Infof("database open (%s)", cfg.Database.Driver)

	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("redis not available, running without value cache")
		} else {
			db.SetValueCache(valuecache.NewRedisCache(redisClient, cfg.Redis.TTL))
			log.Infof("redis connected (%s)", cfg.Redis.Address)
		}
		cancel()
		defer redisClient.Close()
	}

	var msgClient *messaging.Client
	if a.eventsEnabled() {
		msgClient = messaging.NewClient(&cfg.Messaging)
		if err := msgClient.Connect(); err != nil {
			log.WithError(err).Warn("messaging connect failed, events stay in the outbox")
		} else {
			log.Infof("messaging connected (%s)", cfg.Messaging.Backend)
		}
		defer msgClient.Close()

		a.enableEvents(db)
		drainer := messaging.NewOutboxDrainer(db, msgClient, cfg.Messaging.OutboxDrainInterval)
		drainer.Start()
		defer drainer.Stop()
	}

	var conn www.Connectivity
	if msgClient != nil {
		conn = msgClient
	}
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           www.NewRouter(db, conn),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("web server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case err := <-errCh:
		return fmt.Errorf("web server: %w", err)
	}

	log.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
