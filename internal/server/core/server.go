package core

import (
	"context"
	"fmt"

	"github.com/kzeller/plcsim/internal/config"
	"github.com/kzeller/plcsim/internal/logging"
	"github.com/kzeller/plcsim/internal/metrics"
	"github.com/kzeller/plcsim/internal/notify"
	"github.com/kzeller/plcsim/internal/signals"
)

// NewServer creates a signal-exchange server around an existing store and
// notifier. The notifier's sender is wired to the notification socket when
// Start binds it.
func NewServer(cfg *config.ServerConfig, logger *logging.Logger, store *signals.Store, notifier *notify.Notifier, sink *metrics.Sink) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("server requires a signal store")
	}
	if sink == nil {
		sink = metrics.NewSink()
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:     cfg,
		logger:     logger,
		store:      store,
		notifier:   notifier,
		sink:       sink,
		replyClock: signals.NewClock(),
		ctx:        ctx,
		cancel:     cancel,
	}

	return s, nil
}

// Metrics returns the server's counter sink.
func (s *Server) Metrics() *metrics.Sink {
	return s.sink
}
