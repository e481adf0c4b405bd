package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sigbus/sigbus/config"
	"github.com/sigbus/sigbus/pkg/api"
	"github.com/sigbus/sigbus/pkg/api/handlers"
	"github.com/sigbus/sigbus/pkg/dispatch"
	"github.com/sigbus/sigbus/pkg/eventbus"
	"github.com/sigbus/sigbus/pkg/logger"
	"github.com/sigbus/sigbus/pkg/metrics"
	"github.com/sigbus/sigbus/pkg/router"
	"github.com/sigbus/sigbus/pkg/telemetry/tracing"
	"github.com/sigbus/sigbus/pkg/version"
)

var (
	configPath  = flag.String("config", "", "Path to configuration file")
	versionFlag = flag.Bool("version", false, "Print version information")
	helpFlag    = flag.Bool("help", false, "Print help information")

	// CLI overrides
	appName    = flag.String("app-name", "", "Override app name")
	serverPort = flag.Int("port", 0, "Override server port")
	logLevel   = flag.String("log-level", "", "Override log level")
	debugMode  = flag.Bool("debug", false, "Enable debug mode")
)

func main() {
	flag.Parse()

	if *helpFlag {
		printHelp()
		os.Exit(0)
	}

	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	overrides := buildOverrides()

	cfg, err := config.Load(*configPath, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration:\n%s\n", err)
		os.Exit(1)
	}

	logCfg := &logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if cfg.App.Debug || *debugMode {
		logCfg.Level = logger.DebugLevel
	}
	log := logger.New(logCfg)
	logger.SetGlobal(log)

	log.Info("Starting signal mesh",
		"version", version.Version,
		"buildTime", version.BuildTime,
		"gitCommit", version.GitCommit,
		"app", cfg.App.Name,
		"environment", cfg.App.Environment,
	)
	log.Debug("Configuration loaded", "config", cfg.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.App.Name, version.Version)
	if err != nil {
		log.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error("Error shutting down tracing", "error", err)
		}
	}()

	metricsCfg := metrics.Config{
		Enabled:                cfg.Metrics.Enabled,
		Port:                   cfg.Metrics.Port,
		Path:                   cfg.Metrics.Path,
		PatternDurationBuckets: metrics.DefaultConfig().PatternDurationBuckets,
		HTTPDurationBuckets:    metrics.DefaultConfig().HTTPDurationBuckets,
	}
	metricsManager := metrics.NewManager(metricsCfg)

	if metricsManager.Enabled() {
		go func() {
			log.Info("Starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			if err := metricsManager.StartServer(ctx, cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
				log.Error("Metrics server error", "error", err)
			}
		}()
	}

	registry, builtins := dispatch.NewRegistryWithBuiltins(log, cfg.App.Name, metricsManager)
	if err := wireTransports(cfg, builtins); err != nil {
		log.Error("Failed to wire transports", "error", err)
		os.Exit(1)
	}

	rt, err := router.New()
	if err != nil {
		log.Error("Failed to build router", "error", err)
		os.Exit(1)
	}

	dispatcher := dispatch.NewDispatcher(registry)

	signalHandler := handlers.NewSignalHandler(rt, dispatcher, cfg.App.DefaultSource, log, metricsManager)
	healthHandler := handlers.NewHealthHandler(rt, registry)

	apiHandlers := &api.Handlers{
		Signal:  signalHandler,
		Health:  healthHandler,
		Metrics: metricsManager,
	}

	httpServer := api.NewHTTPServer(cfg, log, apiHandlers)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
		if err := httpServer.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	log.Info("signal mesh is running",
		"http_port", cfg.Server.Port,
		"metrics_port", cfg.Metrics.Port,
	)
	log.Info("Press Ctrl+C to stop")

	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", "signal", sig)
	case err := <-serverErrChan:
		log.Error("HTTP server error", "error", err)
	case <-ctx.Done():
		log.Info("Context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	log.Info("Shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down HTTP server", "error", err)
	}

	log.Info("signal mesh stopped gracefully")
}

// wireTransports binds the bus and pubsub adapters' default transports
// according to configuration, falling back to in-process memory buses
// when Redis is not configured. Each registration wraps its transport in
// a Publisher (see dispatch.TransportDirectory), so a bad nodeID/retry
// configuration surfaces here rather than at first delivery.
func wireTransports(cfg *config.Config, builtins *dispatch.Builtins) error {
	switch cfg.Dispatch.Bus.Type {
	case "redis":
		client := eventbus.NewRedisUniversalClient(cfg.Dispatch.Bus.Redis.Address, cfg.Dispatch.Bus.Redis.Password, cfg.Dispatch.Bus.Redis.DB)
		if err := builtins.Buses.Register(cfg.Dispatch.Bus.DefaultStream, eventbus.NewRedisTransport(client)); err != nil {
			return err
		}
	default:
		if err := builtins.Buses.Register(cfg.Dispatch.Bus.DefaultStream, eventbus.NewMemoryBus()); err != nil {
			return err
		}
	}

	switch cfg.Dispatch.PubSub.Type {
	case "redis":
		client := eventbus.NewRedisUniversalClient(cfg.Dispatch.PubSub.Redis.Address, cfg.Dispatch.PubSub.Redis.Password, cfg.Dispatch.PubSub.Redis.DB)
		if err := builtins.Brokers.Register("default", eventbus.NewRedisTransport(client)); err != nil {
			return err
		}
	default:
		if err := builtins.Brokers.Register("default", eventbus.NewMemoryBus()); err != nil {
			return err
		}
	}
	return nil
}

func buildOverrides() map[string]interface{} {
	overrides := make(map[string]interface{})

	if *appName != "" {
		overrides["app.name"] = *appName
	}
	if *serverPort != 0 {
		overrides["server.port"] = *serverPort
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}
	if *debugMode {
		overrides["app.debug"] = true
	}

	return overrides
}

func printVersion() {
	fmt.Printf("signalmesh - Signal Routing and Dispatch Mesh\n")
	fmt.Printf("Version:    %s\n", version.Version)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Printf("Git Commit: %s\n", version.GitCommit)
	fmt.Printf("Go Version: %s\n", version.GoVersion)
}

func printHelp() {
	fmt.Printf("signalmesh - Type-pattern routing and pluggable dispatch for CloudEvents-compatible signals\n\n")
	fmt.Printf("Usage: signalmesh [options]\n\n")
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  signalmesh                                 # Run with default config\n")
	fmt.Printf("  signalmesh -config config.yaml              # Use specific config file\n")
	fmt.Printf("  signalmesh -port 9090 -log-level debug       # Override specific options\n")
	fmt.Printf("  signalmesh -version                          # Print version info\n")
}
