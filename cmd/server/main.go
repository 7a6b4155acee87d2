package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron"

	emailPkg "fitgympro/internal/adapters/email"
	web "fitgympro/internal/adapters/http"
	"fitgympro/internal/adapters/http/perf"
	"fitgympro/internal/adapters/storage/kv"
	"fitgympro/internal/application/orchestrators"
	"fitgympro/internal/config"
	"fitgympro/internal/logging"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logCloser := logging.Setup(logging.Options{
		Level:      cfg.LogLevel,
		JSON:       cfg.LogJSON,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	defer logCloser.Close()

	// The store opens lazily; the first seed below performs the schema upgrade.
	opener, err := kv.NewOpener(cfg.StoreBackend, cfg.StorePath)
	if err != nil {
		log.Fatalf("failed to configure store: %v", err)
	}
	store := kv.NewStore(opener)
	defer store.Close()

	// Performance instrumentation: wrap the store with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timed := kv.NewTimedStore(store, collector, cfg.SlowOpMs)
	stores := web.NewKVStores(timed)

	ctx := context.Background()

	// Seed the admin account if none exists
	seedAdmin := orchestrators.SeedAdminInput{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	}
	_, err = orchestrators.ExecuteSeedAdmin(ctx, seedAdmin, orchestrators.SeedAdminDeps{
		AccountStore: stores.AccountStore,
		Now:          time.Now,
	})
	switch {
	case errors.Is(err, orchestrators.ErrSeedPasswordRequired) && !cfg.Production():
		slog.Warn("seed_event", "event", "admin_skipped", "reason", "FITGYM_ADMIN_PASSWORD is not set")
	case err != nil:
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Sync the built-in CMS catalogues and seed the magazine
	cmsDeps := orchestrators.SeedCMSDeps{
		Catalog:  stores.CatalogStore,
		Articles: stores.ArticleStore,
		Activity: stores.ActivityStore,
		Now:      time.Now,
	}
	if _, err := orchestrators.ExecuteSeedCMS(ctx, cmsDeps); err != nil {
		log.Fatalf("failed to seed CMS: %v", err)
	}

	// Nightly maintenance: re-sync the catalogues so new built-in entries reach
	// running sites, and drop browser sessions past their TTL
	scheduler := cron.New()
	if cfg.CMSSyncSchedule != "" {
		err := scheduler.AddFunc(cfg.CMSSyncSchedule, func() {
			ctx := context.Background()
			if _, err := orchestrators.ExecuteSeedCMS(ctx, cmsDeps); err != nil {
				slog.Error("cms_sync_failed", "error", err)
			}
			n, err := stores.SessionStore.PurgeExpired(ctx)
			if err != nil {
				slog.Error("session_purge_failed", "error", err)
				return
			}
			slog.Info("auth_event", "event", "sessions_purged", "count", n)
		})
		if err != nil {
			log.Fatalf("invalid FITGYM_CMS_SYNC schedule %q: %v", cfg.CMSSyncSchedule, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Configure email sender
	if cfg.ResendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(cfg.ResendKey, cfg.ResendFrom))
		slog.Info("email_sender", "provider", "resend")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender())
		if cfg.Production() {
			slog.Warn("email_sender", "provider", "noop", "reason", "FITGYM_RESEND_KEY is not set; email delivery is disabled")
		} else {
			slog.Info("email_sender", "provider", "noop")
		}
	}

	csrfKey, err := cfg.CSRFKeyBytes()
	if err != nil {
		log.Fatalf("invalid CSRF key: %v", err)
	}
	handler := web.NewMux(stores, web.Options{
		CSRFKey:        csrfKey,
		Production:     cfg.Production(),
		TrustedOrigins: cfg.TrustedOrigins,
		RateLimit:      cfg.RateLimit,
		SlowRequestMs:  cfg.SlowOpMs,
	}, collector)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		slog.Info("server_start", "version", version, "addr", cfg.Addr, "env", cfg.Env,
			"backend", cfg.StoreBackend, "schema", kv.LatestSchemaVersion())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-stop.Done()
	slog.Info("server_stop", "reason", "signal")

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server_shutdown_failed", "error", err)
	}
}
