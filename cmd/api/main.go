package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/bryanwahyu/automaton-ready/internal/application"
	"github.com/bryanwahyu/automaton-ready/internal/application/analysis"
	appsession "github.com/bryanwahyu/automaton-ready/internal/application/session"
	"github.com/bryanwahyu/automaton-ready/internal/config"
	"github.com/bryanwahyu/automaton-ready/internal/domain/analyst"
	"github.com/bryanwahyu/automaton-ready/internal/domain/narrative"
	"github.com/bryanwahyu/automaton-ready/internal/domain/session"
	"github.com/bryanwahyu/automaton-ready/internal/infra/ai/anthropic"
	"github.com/bryanwahyu/automaton-ready/internal/infra/ai/openai"
	"github.com/bryanwahyu/automaton-ready/internal/infra/ai/proxy"
	mysqlp "github.com/bryanwahyu/automaton-ready/internal/infra/db/mysql"
	"github.com/bryanwahyu/automaton-ready/internal/infra/db/postgres"
	"github.com/bryanwahyu/automaton-ready/internal/infra/httpserver"
	badgerkv "github.com/bryanwahyu/automaton-ready/internal/infra/kv/badger"
	minioStore "github.com/bryanwahyu/automaton-ready/internal/infra/storage"
	"github.com/bryanwahyu/automaton-ready/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("config load error", "error", err)
		os.Exit(1)
	}
	log := cfg.NewLogger(os.Stderr)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

type stores struct {
	snapshots session.SnapshotStore
	records   analyst.Repository
	health    middleware.Check
	close     func() error
}

func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	switch cfg.Storage.Driver {
	case "mysql", "postgres":
		var (
			db  *sql.DB
			err error
			st  stores
		)
		if cfg.Storage.Driver == "mysql" {
			if db, err = mysqlp.Connect(ctx, cfg.MySQLDSN()); err != nil {
				return nil, fmt.Errorf("mysql connect: %w", err)
			}
			err = mysqlp.Migrate(ctx, db)
			st.snapshots, st.records = mysqlp.NewSnapshotRepository(db), mysqlp.NewAnalystRepository(db)
		} else {
			if db, err = postgres.Connect(ctx, cfg.PostgresDSN()); err != nil {
				return nil, fmt.Errorf("postgres connect: %w", err)
			}
			err = postgres.Migrate(ctx, db)
			st.snapshots, st.records = postgres.NewSnapshotRepository(db), postgres.NewAnalystRepository(db)
		}
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		st.health = middleware.Check{Name: cfg.Storage.Driver, Probe: middleware.PingDB(db)}
		st.close = db.Close
		return &st, nil
	default:
		kv, err := badgerkv.Open(badgerkv.Config{
			Path:       cfg.Storage.Badger.Path,
			InMemory:   cfg.Storage.Badger.InMemory,
			SyncWrites: true,
			Logger:     log,
		})
		if err != nil {
			return nil, err
		}
		return &stores{
			snapshots: kv,
			records:   kv,
			health: middleware.Check{Name: "badger", Probe: middleware.CheckFunc(func(ctx context.Context) error {
				_, err := kv.Get(ctx, "health")
				if errors.Is(err, session.ErrSnapshotNotFound) {
					return nil
				}
				return err
			})},
			close: kv.Close,
		}, nil
	}
}

func narrativeClient(cfg *config.Config, upstream *anthropic.Client) narrative.Client {
	switch cfg.Narrative.Provider {
	case "anthropic":
		if upstream.Configured() {
			return upstream
		}
	case "openai":
		if cfg.Narrative.OpenAIKey != "" {
			return openai.NewClient(cfg.Narrative.OpenAIKey, cfg.Narrative.Model)
		}
	case "proxy":
		return proxy.NewClient(cfg.Narrative.ProxyURL, cfg.Narrative.Timeout)
	}
	return nil
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	// init minio
	var artifacts session.ArtifactStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init: %w", err)
		}
		artifacts = store
	}

	upstream := anthropic.NewClient(cfg.Narrative.AnthropicKey, cfg.Narrative.Model, cfg.Narrative.Timeout*2, log)
	client := narrativeClient(cfg, upstream)
	log.Info("narrative provider", "provider", cfg.Narrative.Provider, "enabled", client != nil)

	orch := analysis.New(client, st.records, cfg.Narrative.Timeout, log, analysis.NewMetrics(reg))
	orch.Request = narrative.Request{
		Model:       cfg.Narrative.Model,
		MaxTokens:   cfg.Narrative.MaxTokens,
		Temperature: cfg.Narrative.Temperature,
	}

	svc := &appsession.Service{
		Store:     st.snapshots,
		Artifacts: artifacts,
		Analyzer:  orch,
		Clock:     application.SystemClock{},
		Log:       log,
		Debounce:  cfg.Autosave.Debounce,
	}

	checks := []middleware.Check{st.health, {
		Name:     "narrative",
		Optional: true,
		Probe: middleware.CheckFunc(func(context.Context) error {
			if client == nil {
				return narrative.ErrUnavailable
			}
			return nil
		}),
	}}
	ready := &middleware.Readiness{}

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst)
	stopSweep := make(chan struct{})
	go limiter.Run(stopSweep)
	defer close(stopSweep)

	handler := httpserver.NewRouter(httpserver.Deps{
		Sessions:    svc,
		Records:     st.records,
		Upstream:    upstream,
		Health:      checks,
		Ready:       ready,
		Metrics:     middleware.NewHTTPMetrics(reg),
		Gatherer:    reg,
		Limiter:     limiter,
		Log:         log,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Narrative.Timeout*2 + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	errc := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	ready.Set(true)

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-errc:
		return err
	}
	log.Info("shutting down server")
	ready.Set(false)

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Warn("shutdown error", "error", err)
	}
	svc.Flush()
	return nil
}
