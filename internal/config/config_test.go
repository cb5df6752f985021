package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plcsim.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

// Test that an empty file loads with every default applied.
func TestLoadServerConfigDefaults(t *testing.T) {
	path := writeTestConfig(t, "")
	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig failed: %v", err)
	}
	if cfg.Server.RequestPort != 5555 {
		t.Errorf("Expected default request_port 5555, got %d", cfg.Server.RequestPort)
	}
	if cfg.Server.NotifyPort != 5556 {
		t.Errorf("Expected default notify_port 5556, got %d", cfg.Server.NotifyPort)
	}
	if cfg.Server.LockstepEndpoint != "tcp://*:5555" {
		t.Errorf("Expected default lockstep endpoint, got %q", cfg.Server.LockstepEndpoint)
	}
	if cfg.Server.EnableLockstep == nil || !*cfg.Server.EnableLockstep {
		t.Error("Expected lock-step enabled by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Unexpected logging defaults: %+v", cfg.Logging)
	}
}

// Test that notify_port tracks a non-default request_port.
func TestNotifyPortFollowsRequestPort(t *testing.T) {
	path := writeTestConfig(t, "server:\n  request_port: 7000\n")
	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig failed: %v", err)
	}
	if cfg.Server.NotifyPort != 7001 {
		t.Errorf("Expected notify_port 7001, got %d", cfg.Server.NotifyPort)
	}
}

func TestExplicitNotifyPortKept(t *testing.T) {
	path := writeTestConfig(t, "server:\n  request_port: 7000\n  notify_port: 9000\n")
	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig failed: %v", err)
	}
	if cfg.Server.NotifyPort != 9000 {
		t.Errorf("Expected notify_port 9000, got %d", cfg.Server.NotifyPort)
	}
}

func TestInitialSignalsParsed(t *testing.T) {
	content := "initial_signals:\n  valve: true\n  count: 3\n  label: dock\n"
	path := writeTestConfig(t, content)
	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig failed: %v", err)
	}
	if cfg.InitialSignals["valve"] != true {
		t.Errorf("Expected valve=true, got %v", cfg.InitialSignals["valve"])
	}
	if cfg.InitialSignals["count"] != 3 {
		t.Errorf("Expected count=3, got %v", cfg.InitialSignals["count"])
	}
	if cfg.InitialSignals["label"] != "dock" {
		t.Errorf("Expected label=dock, got %v", cfg.InitialSignals["label"])
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad listen ip", "server:\n  listen_ip: not-an-ip\n"},
		{"request port out of range", "server:\n  request_port: 70000\n"},
		{"notify equals request", "server:\n  request_port: 5555\n  notify_port: 5555\n"},
		{"bad lockstep endpoint", "server:\n  lockstep_endpoint: \"5560\"\n"},
		{"bad controller addr", "server:\n  controller_addr: nohostport\n"},
		{"bad log level", "logging:\n  level: chatty\n"},
		{"bad log format", "logging:\n  format: xml\n"},
		{"bad metrics port", "metrics:\n  enable: true\n  port: -1\n"},
	}
	for _, tc := range cases {
		path := writeTestConfig(t, tc.content)
		if _, err := LoadServerConfig(path); err == nil {
			t.Errorf("Expected error for %s", tc.name)
		}
	}
}

func TestLoadServerConfigMissingFile(t *testing.T) {
	if _, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestWriteDefaultServerConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.yaml")
	if err := WriteDefaultServerConfig(path); err != nil {
		t.Fatalf("WriteDefaultServerConfig failed: %v", err)
	}
	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("Generated default config does not load: %v", err)
	}
	if cfg.Server.RequestPort != 5555 {
		t.Errorf("Expected request_port 5555 in generated config, got %d", cfg.Server.RequestPort)
	}
	if len(cfg.InitialSignals) == 0 {
		t.Error("Expected sample initial_signals in generated config")
	}
}
