package server

import (
	"github.com/kzeller/plcsim/internal/config"
	"github.com/kzeller/plcsim/internal/logging"
	"github.com/kzeller/plcsim/internal/metrics"
	"github.com/kzeller/plcsim/internal/notify"
	"github.com/kzeller/plcsim/internal/server/core"
	"github.com/kzeller/plcsim/internal/signals"
)

type Server = core.Server

func NewServer(cfg *config.ServerConfig, logger *logging.Logger, store *signals.Store, notifier *notify.Notifier, sink *metrics.Sink) (*core.Server, error) {
	return core.NewServer(cfg, logger, store, notifier, sink)
}
