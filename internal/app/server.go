package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kzeller/plcsim/internal/config"
	"github.com/kzeller/plcsim/internal/errors"
	"github.com/kzeller/plcsim/internal/logging"
	"github.com/kzeller/plcsim/internal/metrics"
	"github.com/kzeller/plcsim/internal/notify"
	"github.com/kzeller/plcsim/internal/server"
	"github.com/kzeller/plcsim/internal/signals"
)

type ServerOptions struct {
	ConfigPath     string
	ListenIP       string
	RequestPort    int
	NotifyPort     int
	ControllerAddr string
	NoLockstep     bool
	LogFormat      string
	LogLevel       string
	LogEvery       int
}

func RunServer(opts ServerOptions) error {
	var cfg *config.ServerConfig
	var err error

	if opts.ConfigPath != "" {
		cfg, err = config.LoadServerConfig(opts.ConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to load server config: %v\n", err)
			return errors.WrapConfigError(err, opts.ConfigPath)
		}
	} else {
		cfg = config.CreateDefaultServerConfig()
	}

	applyServerOverrides(cfg, opts)
	if err := config.ValidateServerConfig(cfg); err != nil {
		return errors.WrapConfigError(err, opts.ConfigPath)
	}

	logger, err := logging.NewLoggerWithOptions(logging.LogLevelInfo, cfg.Logging.LogFile, cfg.Logging.Format, cfg.Logging.LogEveryN)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Close()
	logger.SetLevel(parseLogLevel(cfg.Logging.Level))

	store := signals.NewStore()
	if len(cfg.InitialSignals) > 0 {
		store.Apply(cfg.InitialSignals)
		logger.Info("Loaded %d initial signals", len(cfg.InitialSignals))
	}
	store.AddObserver(signals.NewLogObserver(logger))

	notifier := notify.NewNotifier(logger)
	sink := metrics.NewSink()

	srv, err := server.NewServer(cfg, logger, store, notifier, sink)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to start server: %v\n", err)
		return err
	}

	notifier.Start()
	// Attaching after start delivers the initial snapshot as the first
	// notification a connected controller sees.
	store.AddObserver(notifier)

	logger.LogStartup(cfg.Server.Name, cfg.Server.ListenIP, cfg.Server.RequestPort, cfg.Server.NotifyPort, cfg.Server.LockstepEndpoint, cfg.Server.ControllerAddr, opts.ConfigPath)
	fmt.Fprintf(os.Stdout, "Server started successfully\n")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	fmt.Fprintf(os.Stdout, "\nShutting down server...\n")

	if err := srv.Stop(); err != nil {
		return fmt.Errorf("stop server: %w", err)
	}
	notifier.Stop()
	if dropped := notifier.Dropped(); dropped > 0 {
		logger.Info("Dropped %d notifications during this run", dropped)
	}

	return nil
}

func applyServerOverrides(cfg *config.ServerConfig, opts ServerOptions) {
	if opts.ListenIP != "" {
		cfg.Server.ListenIP = opts.ListenIP
	}
	if opts.RequestPort != 0 {
		cfg.Server.RequestPort = opts.RequestPort
		if opts.NotifyPort == 0 {
			cfg.Server.NotifyPort = opts.RequestPort + 1
		}
	}
	if opts.NotifyPort != 0 {
		cfg.Server.NotifyPort = opts.NotifyPort
	}
	if opts.ControllerAddr != "" {
		cfg.Server.ControllerAddr = opts.ControllerAddr
	}
	if opts.NoLockstep {
		disabled := false
		cfg.Server.EnableLockstep = &disabled
	}
	if opts.LogFormat != "" {
		cfg.Logging.Format = opts.LogFormat
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.LogEvery > 0 {
		cfg.Logging.LogEveryN = opts.LogEvery
	}
}

func parseLogLevel(value string) logging.LogLevel {
	switch value {
	case "silent":
		return logging.LogLevelSilent
	case "error":
		return logging.LogLevelError
	case "verbose":
		return logging.LogLevelVerbose
	case "debug":
		return logging.LogLevelDebug
	default:
		return logging.LogLevelInfo
	}
}
