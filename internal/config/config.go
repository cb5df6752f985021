package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig is the top-level YAML configuration for the plcsim endpoint.
type ServerConfig struct {
	Server         ServerSection  `yaml:"server"`
	Logging        LoggingSection `yaml:"logging"`
	Metrics        MetricsSection `yaml:"metrics"`
	InitialSignals map[string]any `yaml:"initial_signals,omitempty"`
}

// ServerSection configures the network endpoints.
type ServerSection struct {
	Name             string `yaml:"name"`
	ListenIP         string `yaml:"listen_ip"`
	RequestPort      int    `yaml:"request_port"`
	NotifyPort       int    `yaml:"notify_port"`
	LockstepEndpoint string `yaml:"lockstep_endpoint"`
	ControllerAddr   string `yaml:"controller_addr"`
	EnableLockstep   *bool  `yaml:"enable_lockstep,omitempty"`
}

// LoggingSection configures log output.
type LoggingSection struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	LogFile   string `yaml:"log_file,omitempty"`
	LogEveryN int    `yaml:"log_every_n"`
}

// MetricsSection configures the plaintext metrics listener.
type MetricsSection struct {
	Enable   bool   `yaml:"enable"`
	ListenIP string `yaml:"listen_ip"`
	Port     int    `yaml:"port"`
}

// LoadServerConfig reads, parses, defaults, and validates a config file.
func LoadServerConfig(path string) (*ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg ServerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := ValidateServerConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills in unset fields. The notify port defaults to one above
// the request port.
func ApplyDefaults(cfg *ServerConfig) {
	if cfg.Server.Name == "" {
		cfg.Server.Name = "plcsim"
	}
	if cfg.Server.ListenIP == "" {
		cfg.Server.ListenIP = "0.0.0.0"
	}
	if cfg.Server.RequestPort == 0 {
		cfg.Server.RequestPort = 5555
	}
	if cfg.Server.NotifyPort == 0 {
		cfg.Server.NotifyPort = cfg.Server.RequestPort + 1
	}
	if cfg.Server.LockstepEndpoint == "" {
		cfg.Server.LockstepEndpoint = "tcp://*:5555"
	}
	if cfg.Server.EnableLockstep == nil {
		enabled := true
		cfg.Server.EnableLockstep = &enabled
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.LogEveryN == 0 {
		cfg.Logging.LogEveryN = 1
	}
	if cfg.Metrics.ListenIP == "" {
		cfg.Metrics.ListenIP = "127.0.0.1"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9105
	}
}

// ValidateServerConfig checks a fully-defaulted config for mistakes worth
// stopping on before any socket is opened.
func ValidateServerConfig(cfg *ServerConfig) error {
	if net.ParseIP(cfg.Server.ListenIP) == nil {
		return fmt.Errorf("invalid listen_ip %q", cfg.Server.ListenIP)
	}
	if cfg.Server.RequestPort < 1 || cfg.Server.RequestPort > 65535 {
		return fmt.Errorf("request_port %d out of range 1-65535", cfg.Server.RequestPort)
	}
	if cfg.Server.NotifyPort < 1 || cfg.Server.NotifyPort > 65535 {
		return fmt.Errorf("notify_port %d out of range 1-65535", cfg.Server.NotifyPort)
	}
	if cfg.Server.NotifyPort == cfg.Server.RequestPort {
		return fmt.Errorf("notify_port must differ from request_port")
	}
	if *cfg.Server.EnableLockstep {
		if !strings.Contains(cfg.Server.LockstepEndpoint, "://") {
			return fmt.Errorf("invalid lockstep_endpoint %q, expected a transport like tcp://*:5555", cfg.Server.LockstepEndpoint)
		}
	}
	if cfg.Server.ControllerAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.Server.ControllerAddr); err != nil {
			return fmt.Errorf("invalid controller_addr %q: %w", cfg.Server.ControllerAddr, err)
		}
	}
	switch cfg.Logging.Level {
	case "silent", "error", "info", "verbose", "debug":
	default:
		return fmt.Errorf("invalid logging level %q, expected silent, error, info, verbose, or debug", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging format %q, expected text or json", cfg.Logging.Format)
	}
	if cfg.Logging.LogEveryN < 1 {
		return fmt.Errorf("log_every_n must be at least 1")
	}
	if cfg.Metrics.Enable {
		if net.ParseIP(cfg.Metrics.ListenIP) == nil {
			return fmt.Errorf("invalid metrics listen_ip %q", cfg.Metrics.ListenIP)
		}
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics port %d out of range 1-65535", cfg.Metrics.Port)
		}
	}
	for name := range cfg.InitialSignals {
		if name == "" {
			return fmt.Errorf("initial_signals contains an empty signal name")
		}
	}
	return nil
}

// CreateDefaultServerConfig returns the config the server runs with when no
// file is given.
func CreateDefaultServerConfig() *ServerConfig {
	cfg := &ServerConfig{}
	ApplyDefaults(cfg)
	return cfg
}

// WriteDefaultServerConfig writes a commented starter config to path.
func WriteDefaultServerConfig(path string) error {
	cfg := CreateDefaultServerConfig()
	cfg.Server.ControllerAddr = "127.0.0.1:6556"
	cfg.InitialSignals = map[string]any{
		"startProduction": false,
		"isRunningOrders": false,
		"numLeftInOrder":  0,
		"locationName":    "loading dock",
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	header := "# plcsim endpoint configuration.\n" +
		"# The UDP request port and the lock-step endpoint expose the same\n" +
		"# signal table. notify_port defaults to request_port+1.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
