package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Llorsque/monitor-dashboard-CO/internal/api"
	"github.com/Llorsque/monitor-dashboard-CO/internal/audit"
	"github.com/Llorsque/monitor-dashboard-CO/internal/config"
	"github.com/Llorsque/monitor-dashboard-CO/internal/metrics"
	"github.com/Llorsque/monitor-dashboard-CO/internal/pkg/distlock"
	"github.com/Llorsque/monitor-dashboard-CO/internal/pkg/logger"
	"github.com/Llorsque/monitor-dashboard-CO/internal/repository/postgres"
	"github.com/Llorsque/monitor-dashboard-CO/internal/service/dashboard"
	"github.com/Llorsque/monitor-dashboard-CO/internal/session"
	"github.com/Llorsque/monitor-dashboard-CO/internal/storage"
	"github.com/redis/go-redis/v9"
)

// publishLockTTL bounds how long a crashed publish can block the session.
const publishLockTTL = 2 * time.Minute

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := net.JoinHostPort(host, fmt.Sprint(port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	cfg, err := config.LoadFromEnv(configPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetRedactPII(cfg.Log.Redact())

	host, port := cfg.Server.GetHost(), cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	ctx := context.Background()

	// Session store
	var (
		store       session.Store
		memStore    *session.MemoryStore
		redisClient *redis.Client
	)
	switch cfg.Session.Store {
	case "redis":
		rs, err := session.NewRedisStoreFromURL(cfg.Session.RedisURL, cfg.Session.TTL())
		if err != nil {
			log.Fatalf("Failed to configure Redis session store: %v", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = rs.Client().Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("Redis unreachable: %v", err)
		}
		store, redisClient = rs, rs.Client()
		logger.Info("session store ready", "store", "redis", "ttl", cfg.Session.TTL().String())
	default:
		memStore = session.NewMemoryStore(cfg.Session.TTL())
		store = memStore
		logger.Info("session store ready", "store", "memory", "ttl", cfg.Session.TTL().String())
	}

	// Upload audit log (optional)
	var (
		recorder audit.Recorder = audit.Nop{}
		db       *sql.DB
	)
	if cfg.Audit.Enabled() {
		db, err = postgres.Open(ctx, cfg.Audit.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to audit database: %v", err)
		}
		defer db.Close()
		recorder = postgres.NewUploadAuditRepo(db)
		logger.Info("upload audit enabled")
	} else {
		logger.Warn("DATABASE_URL not set, upload audit disabled")
	}

	// Export storage
	publisher, err := storage.New(ctx, cfg.Export)
	if err != nil {
		log.Fatalf("Failed to initialize export storage: %v", err)
	}
	pinger, _ := publisher.(storage.Pinger)
	logger.Info("export storage ready", "type", cfg.Export.Type)

	m := metrics.New()
	svc := dashboard.NewService(dashboard.Options{
		Store:     store,
		Audit:     recorder,
		Publisher: publisher,
		Metrics:   m,
		Locks:     distlock.NewFactory(redisClient, publishLockTTL),
		KPIs:      cfg.KPIs,
	})

	health := api.NewHealthChecker(db, redisClient, pinger)
	if memStore != nil {
		health.WithSessionCounter(memStore)
	}
	router := api.SetupRoutes(cfg,
		api.NewHandlers(svc, cfg.Upload.MaxBytes),
		health,
		m.Handler(),
	)
	server := api.NewServer(cfg.Server, router)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "addr", server.Addr(), "kpis", len(cfg.KPIs))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("server stopped")
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/config.yaml"
}
