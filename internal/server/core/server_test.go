package core

import (
	"testing"

	"go.uber.org/goleak"

	"github.com/kzeller/plcsim/internal/config"
	"github.com/kzeller/plcsim/internal/logging"
	"github.com/kzeller/plcsim/internal/metrics"
	"github.com/kzeller/plcsim/internal/notify"
	"github.com/kzeller/plcsim/internal/signals"
)

// createTestConfig returns a config bound to ephemeral loopback ports with
// the lock-step adapter off. Tests that need lock-step enable it themselves.
func createTestConfig() *config.ServerConfig {
	lockstep := false
	cfg := &config.ServerConfig{}
	cfg.Server.Name = "test"
	cfg.Server.ListenIP = "127.0.0.1"
	cfg.Server.RequestPort = 0
	cfg.Server.NotifyPort = 0
	cfg.Server.EnableLockstep = &lockstep
	cfg.Logging.Level = "silent"
	return cfg
}

func createTestServer(t *testing.T, cfg *config.ServerConfig) (*Server, *signals.Store, *notify.Notifier) {
	t.Helper()
	logger, err := logging.NewLogger(logging.LogLevelSilent, "")
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	store := signals.NewStore()
	notifier := notify.NewNotifier(logger)
	srv, err := NewServer(cfg, logger, store, notifier, metrics.NewSink())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return srv, store, notifier
}

// Test that a started server shuts down without leaking goroutines.
func TestServerStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv, _, notifier := createTestServer(t, createTestConfig())
	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	notifier.Start()

	if srv.RequestAddr() == nil {
		t.Error("Expected request address after Start")
	}
	if srv.NotifyAddr() == nil {
		t.Error("Expected notify address after Start")
	}
	if srv.RequestAddr().Port == srv.NotifyAddr().Port {
		t.Error("Expected distinct request and notify ports")
	}

	notifier.Stop()
	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestServerRequiresStore(t *testing.T) {
	logger, err := logging.NewLogger(logging.LogLevelSilent, "")
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	if _, err := NewServer(createTestConfig(), logger, nil, nil, nil); err == nil {
		t.Error("Expected error for nil store")
	}
}

func TestMultipleServersSequentially(t *testing.T) {
	for i := 0; i < 3; i++ {
		srv, _, _ := createTestServer(t, createTestConfig())
		if err := srv.Start(); err != nil {
			t.Fatalf("Start %d failed: %v", i, err)
		}
		if err := srv.Stop(); err != nil {
			t.Fatalf("Stop %d failed: %v", i, err)
		}
	}
}
