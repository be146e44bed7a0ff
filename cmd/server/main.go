package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"zero-finance-go/internal/auth"
	"zero-finance-go/internal/config"
	"zero-finance-go/internal/database"
	httpserver "zero-finance-go/internal/http"
	"zero-finance-go/internal/insights"
	"zero-finance-go/internal/logger"
	"zero-finance-go/internal/reminder"
	"zero-finance-go/internal/store"
)

const sessionPurgeInterval = time.Hour

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal("database connect", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("database migrate", zap.Error(err))
	}

	st := store.New(db)
	outbox := reminder.NewOutbox(db)
	hub := reminder.NewHub(log)
	sessions := auth.NewSessions(db, cfg.JWTSecret, cfg.SessionTTL())

	policy := reminder.Policy{
		LeadDays: cfg.ReminderLeadDays,
		Hour:     cfg.ReminderHour,
		Minute:   cfg.ReminderMinute,
		Location: cfg.Location(),
		CatchUp:  cfg.ReminderCatchUp,
	}
	bridge := reminder.NewBridge(st, outbox, policy, log)
	st.Subscribe(bridge.Trigger)

	sinks := []reminder.Sink{reminder.NewLogSink(log), hub}
	if cfg.ReminderWebhookURL != "" {
		sinks = append(sinks, reminder.NewWebhookSink(cfg.ReminderWebhookURL))
	}
	dispatcher := reminder.NewDispatcher(outbox, cfg.DispatchInterval(), log, sinks...)

	router := httpserver.NewServer(cfg, httpserver.Deps{
		Store:       st,
		Insights:    insights.NewService(st, cfg.Location(), cfg.UpcomingWindowDays),
		Credentials: auth.NewCredentials(db),
		Sessions:    sessions,
		Bridge:      bridge,
		Outbox:      outbox,
		Hub:         hub,
		Log:         log,
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		bridge.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		purgeSessions(ctx, sessions, log)
	}()

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	cancel()
	wg.Wait()

	sqlDB, err := db.DB()
	if err != nil {
		log.Error("db close skipped", zap.Error(err))
	} else {
		sqlDB.Close()
		log.Info("db closed")
	}

	log.Info("server stopped")
}

func purgeSessions(ctx context.Context, sessions *auth.Sessions, log *zap.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.Purge(ctx)
			if err != nil {
				log.Warn("purge sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("purged expired sessions", zap.Int64("count", n))
			}
		}
	}
}
