package main

import (
	"github.com/spf13/cobra"

	"github.com/kzeller/plcsim/internal/app"
)

func newMonitorCmd() *cobra.Command {
	var addr string
	var listenAddr string
	var logLevel string

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Live terminal view of the endpoint's signal table",
		Long: `Open a live monitor showing signal values as they change. The monitor
binds a notification listener; point the endpoint's controller_addr at
--listen for notifications to arrive. Known signals are also re-read
periodically over the request port.`,
		Example: `  # Endpoint started with --controller-addr 127.0.0.1:6556
  plcsim monitor --addr 127.0.0.1:5555 --listen 127.0.0.1:6556`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			return app.RunMonitor(app.MonitorOptions{
				Addr:       addr,
				ListenAddr: listenAddr,
				LogLevel:   logLevel,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5555", "Endpoint request address")
	cmd.Flags().StringVar(&listenAddr, "listen", "127.0.0.1:6556", "Notification listen address")
	cmd.Flags().StringVar(&logLevel, "log-level", "silent", "Log level")
	return cmd
}
