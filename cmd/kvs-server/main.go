// Command kvs-server runs the key-value store's TCP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ignitekv/ignite/internal/adminws"
	"github.com/ignitekv/ignite/internal/engine"
	"github.com/ignitekv/ignite/internal/server"
	"github.com/ignitekv/ignite/internal/sqliteengine"
	"github.com/ignitekv/ignite/pkg/eventbus"
	"github.com/ignitekv/ignite/pkg/logger"
	"github.com/ignitekv/ignite/pkg/metrics"
	"github.com/ignitekv/ignite/pkg/options"
	"github.com/ignitekv/ignite/pkg/tracing"
	"github.com/ignitekv/ignite/pkg/watchdog"
)

const engineMarkerFile = "engine"

func main() {
	addr := flag.String("addr", options.DefaultAddr, "IP:PORT to listen on")
	engineFlavor := flag.String("engine", options.DefaultEngineFlavor, "storage engine: kvs or sqlite")
	dir := flag.String("dir", "", "data directory (defaults to the current working directory)")
	metricsAddr := flag.String("metrics-addr", "", "address to serve Prometheus metrics on (disabled if empty)")
	adminAddr := flag.String("admin-addr", "", "address to serve the admin websocket stats feed on (disabled if empty)")
	tracingEnabled := flag.Bool("tracing", false, "emit OpenTelemetry spans to stdout")
	eventBusURL := flag.String("eventbus-url", "", "NATS server URL for lifecycle events (disabled if empty)")
	watchdogEnabled := flag.Bool("watchdog", false, "warn on every write to the data directory (the engine's own writes included)")
	flag.Parse()

	if err := validateAddr(*addr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *engineFlavor != "kvs" && *engineFlavor != "sqlite" {
		fmt.Fprintf(os.Stderr, "unknown engine: %s\n", *engineFlavor)
		os.Exit(1)
	}

	log := logger.New("kvs-server")

	dataDir := *dir
	if dataDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			log.Errorw("failed to resolve working directory", "error", err)
			os.Exit(1)
		}
		dataDir = cwd
	}

	if err := checkEngineMarker(dataDir, *engineFlavor, log); err != nil {
		log.Errorw("engine marker check failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rec *metrics.Recorder
	if *metricsAddr != "" {
		var handler http.Handler
		rec, handler = metrics.New()
		go serveMetrics(*metricsAddr, handler, log)
	}

	var tracer trace.Tracer
	if *tracingEnabled {
		provider, err := tracing.New(ctx, os.Stdout)
		if err != nil {
			log.Errorw("failed to initialize tracing", "error", err)
			os.Exit(1)
		}
		defer provider.Shutdown(context.Background())
		tracer = provider.Tracer()
	}

	pub, err := eventbus.Connect(*eventBusURL, "ignite.events")
	if err != nil {
		log.Warnw("event bus connect failed, continuing without it", "error", err)
	}
	defer pub.Close()

	if *watchdogEnabled {
		wd, err := watchdog.Start(dataDir, log)
		if err != nil {
			log.Warnw("failed to start watchdog", "error", err)
		} else {
			defer wd.Close()
		}
	}

	store, closeStore, statsFn, err := openStore(ctx, *engineFlavor, dataDir, log, rec, pub)
	if err != nil {
		log.Errorw("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	if *adminAddr != "" && statsFn != nil {
		hub := adminws.NewHub(statsFn, log)
		mux := http.NewServeMux()
		mux.HandleFunc("/stats", hub.ServeHTTP)
		stopHub := make(chan struct{})
		go hub.Run(2*time.Second, stopHub)
		go func() {
			if err := http.ListenAndServe(*adminAddr, mux); err != nil {
				log.Warnw("admin websocket server stopped", "error", err)
			}
		}()
		defer close(stopHub)
	}

	srv := server.New(store, log, tracer)
	if err := srv.Run(ctx, *addr); err != nil && ctx.Err() == nil {
		log.Errorw("server stopped", "error", err)
		os.Exit(1)
	}
}

// openStore opens the configured engine flavor and returns the Store,
// a close function, and a stats function for the admin feed (nil for
// engines that cannot report generation/compaction stats).
func openStore(ctx context.Context, flavor, dataDir string, log *zap.SugaredLogger, rec *metrics.Recorder, pub *eventbus.Publisher) (server.Store, func() error, adminws.StatsFunc, error) {
	switch flavor {
	case "sqlite":
		eng, err := sqliteengine.Open(dataDir)
		if err != nil {
			return nil, nil, nil, err
		}
		return eng, eng.Close, nil, nil
	default:
		eng, err := engine.Open(ctx, &engine.Config{
			Options: &options.Options{DataDir: dataDir, CompactionThreshold: options.DefaultCompactionThreshold},
			Logger:  log,
			Metrics: rec,
			Events:  pub,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		statsFn := func() adminws.Stats {
			s := eng.Stats()
			return adminws.Stats{
				SetCount:         s.SetCount,
				GetCount:         s.GetCount,
				RemoveCount:      s.RemoveCount,
				UncompactedBytes: s.UncompactedBytes,
				ActiveGeneration: s.ActiveGeneration,
			}
		}
		return eng, eng.Close, statsFn, nil
	}
}

func serveMetrics(addr string, handler http.Handler, log *zap.SugaredLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warnw("metrics server stopped", "error", err)
	}
}

func validateAddr(addr string) error {
	parts := strings.Split(addr, ":")
	if len(parts) != 2 {
		return fmt.Errorf("invalid address: %s", addr)
	}
	port, err := strconv.Atoi(parts[1])
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %s", parts[1])
	}
	return nil
}

func checkEngineMarker(dir, flavor string, log *zap.SugaredLogger) error {
	path := filepath.Join(dir, engineMarkerFile)
	existing, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		log.Infow("no engine marker found, starting fresh", "engine", flavor)
		return os.WriteFile(path, []byte(flavor), 0644)
	}

	current := strings.TrimSpace(string(existing))
	if current != flavor {
		return fmt.Errorf("current engine is %q, but requested engine is %q", current, flavor)
	}
	return nil
}
