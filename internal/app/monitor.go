package app

import (
	"fmt"

	"github.com/kzeller/plcsim/internal/controller"
	"github.com/kzeller/plcsim/internal/errors"
	"github.com/kzeller/plcsim/internal/logging"
	"github.com/kzeller/plcsim/internal/tui"
)

type MonitorOptions struct {
	Addr       string
	ListenAddr string
	LogLevel   string
}

// RunMonitor connects the live signal monitor to an endpoint. The listener
// binds ListenAddr, which must match the endpoint's controller_addr for
// notifications to arrive.
func RunMonitor(opts MonitorOptions) error {
	logger, err := logging.NewLogger(parseLogLevel(opts.LogLevel), "")
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	listener, err := controller.NewListener(opts.ListenAddr, logger)
	if err != nil {
		return errors.WrapNetworkError(err, opts.ListenAddr)
	}
	listener.Start()
	defer listener.Stop()

	client, err := controller.Dial(opts.Addr, logger)
	if err != nil {
		return errors.WrapNetworkError(err, opts.Addr)
	}
	defer client.Close()

	return tui.Run(client, listener, opts.Addr)
}
