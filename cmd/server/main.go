package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"
	_ "modernc.org/sqlite"

	emailPkg "lessons/internal/adapters/email"
	web "lessons/internal/adapters/http"
	"lessons/internal/adapters/http/perf"
	"lessons/internal/adapters/pokeapi"
	"lessons/internal/adapters/storage"
	contactStorePkg "lessons/internal/adapters/storage/contact"
	"lessons/internal/adapters/storage/kv"
	"lessons/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const (
	shutdownTimeout = 15 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	configPath := flag.String("config", "", "path to lessons.toml (default $LESSONS_CONFIG or ./lessons.toml)")
	flag.Parse()

	if err := run(config.ResolvePath(*configPath, os.Getenv)); err != nil {
		slog.Error("server_failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath, os.Getenv)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery)
	defer timedDB.Close()
	slog.Info("database_ready", "path", cfg.DBPath)

	kvStore, closeKV, err := openKVStore(cfg, timedDB)
	if err != nil {
		return err
	}
	defer closeKV()

	stores := &web.Stores{
		KVStore:      kvStore,
		ContactStore: contactStorePkg.NewSQLiteStore(timedDB),
	}

	if cfg.ResendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(cfg.ResendKey, cfg.ContactFrom), cfg.ContactInbox)
		slog.Info("email_sender_configured", "provider", "resend", "inbox", cfg.ContactInbox)
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), cfg.ContactInbox)
		if cfg.IsProduction() {
			slog.Warn("email_sender_disabled", "reason", "LESSONS_RESEND_KEY is not set")
		} else {
			slog.Info("email_sender_configured", "provider", "noop")
		}
	}

	csrfKey, err := cfg.CSRFKey()
	if err != nil {
		return err
	}
	if cfg.Secret == "" {
		slog.Warn("csrf_key_random", "hint", "set LESSONS_SECRET so tokens survive a restart")
	}

	app := web.NewMux(stores, web.Options{
		CSRFKey:             csrfKey,
		SecureCookies:       cfg.IsProduction(),
		TrustedOrigins:      cfg.TrustedOrigins,
		RateLimitPerSecond:  cfg.RateLimitPerSecond,
		VisitorTTL:          cfg.SessionTTL,
		SlowRequest:         cfg.SlowRequest,
		PokemonSource:       pokeapi.NewClient(cfg.PokeAPIBaseURL, &http.Client{Timeout: cfg.PokeAPITimeout}),
		ServerResourcePath:  cfg.ServerResourcePath,
		ServerResourceDelay: cfg.ServerResourceDelay,
	}, collector)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	bgCtx, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()

	var lifecycle conc.WaitGroup
	serveErr := make(chan error, 1)
	lifecycle.Go(func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	})
	lifecycle.Go(func() { app.Visitors.Run(bgCtx, sweepInterval) })
	lifecycle.Go(func() { app.Limiter.Run(bgCtx) })

	slog.Info("server_started", "version", version, "addr", cfg.Addr, "env", cfg.Env, "kv_backend", cfg.KVBackend)

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown_signal_received")
	case runErr = <-serveErr:
		slog.Error("server_stopped", "error", runErr.Error())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		slog.Error("server_shutdown_failed", "error", shutdownErr.Error())
	}
	cancelBackground()
	lifecycle.Wait()

	// Run outstanding effect cleanups before the stores close.
	app.Visitors.Close()
	slog.Info("shutdown_complete")
	return runErr
}

// openKVStore returns the configured key-value backend and its closer.
func openKVStore(cfg config.Config, db storage.SQLDB) (kv.Store, func(), error) {
	switch cfg.KVBackend {
	case config.BackendBolt:
		bs, err := kv.OpenBoltStore(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return bs, func() {
			if err := bs.Close(); err != nil {
				slog.Error("bolt_close_failed", "error", err.Error())
			}
		}, nil
	case config.BackendMemory:
		return kv.NewMemoryStore(), func() {}, nil
	default:
		return kv.NewSQLiteStore(db), func() {}, nil
	}
}

func setupLogging(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
