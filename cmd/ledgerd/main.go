package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"creatorledger/config"
	"creatorledger/core"
	"creatorledger/crypto"
	"creatorledger/observability/logging"
	"creatorledger/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger := logging.Setup(cfg.ServiceName, cfg.Environment)

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	node := core.NewNode(db, logger)

	if err := bootstrapPlatform(node, cfg, logger); err != nil {
		logger.Error("Failed to bootstrap platform config", slog.Any("error", err))
		// os.Exit skips deferred calls, so release the DB lock here.
		db.Close()
		os.Exit(1)
	}

	go serveMetrics(cfg.MetricsListen, logger)

	logger.Info("ledgerd ready", "dataDir", cfg.DataDir, "metrics", cfg.MetricsListen)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down")
}

// bootstrapPlatform creates the platform singleton on first boot when the
// config names an admin. An already-initialised ledger is left untouched.
func bootstrapPlatform(node *core.Node, cfg *config.Config, logger *slog.Logger) error {
	if _, err := node.PlatformConfig(); err == nil {
		return nil
	}
	admin := strings.TrimSpace(cfg.AdminAddress)
	if admin == "" {
		logger.Warn("platform config absent and no AdminAddress configured; admin instructions unavailable")
		return nil
	}
	adminAddr, err := crypto.DecodeAddress(admin)
	if err != nil {
		return fmt.Errorf("invalid AdminAddress: %w", err)
	}
	collector := adminAddr
	if trimmed := strings.TrimSpace(cfg.FeeCollector); trimmed != "" {
		if collector, err = crypto.DecodeAddress(trimmed); err != nil {
			return fmt.Errorf("invalid FeeCollector: %w", err)
		}
	}
	var adminKey, collectorKey [20]byte
	copy(adminKey[:], adminAddr.Bytes())
	copy(collectorKey[:], collector.Bytes())
	if _, err := node.InitializePlatform(adminKey, collectorKey); err != nil {
		return err
	}
	logger.Info("platform config initialised", "admin", admin)
	return nil
}

func serveMetrics(listen string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := &http.Server{Addr: listen, Handler: mux}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", slog.Any("error", err))
	}
}
