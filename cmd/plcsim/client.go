package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kzeller/plcsim/internal/app"
)

type clientFlags struct {
	addr     string
	timeout  time.Duration
	logLevel string
}

func newClientCmd() *cobra.Command {
	flags := &clientFlags{}

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Read or write signals on a running endpoint",
	}

	cmd.PersistentFlags().StringVar(&flags.addr, "addr", "127.0.0.1:5555", "Endpoint request address")
	cmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 2*time.Second, "Request timeout")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "error", "Log level")

	cmd.AddCommand(newClientReadCmd(flags))
	cmd.AddCommand(newClientWriteCmd(flags))

	return cmd
}

func (f *clientFlags) options() app.ClientOptions {
	return app.ClientOptions{
		Addr:     f.addr,
		Timeout:  f.timeout,
		LogLevel: f.logLevel,
	}
}

func newClientReadCmd(flags *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "read <signal> [signal...]",
		Short: "Read signal values",
		Example: `  plcsim client read startProduction numLeftInOrder
  plcsim client read --addr 192.168.1.20:5555 locationName`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("at least one signal name is required")
			}
			return app.RunClientRead(flags.options(), args)
		},
	}
}

func newClientWriteCmd(flags *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "write <signal>=<value> [signal=value...]",
		Short: "Write signal values",
		Long: `Write one or more signals in a single atomic batch. Values parse as
JSON where possible, so true, 3, and 1.5 keep their types; anything
else is written as a string.`,
		Example: `  plcsim client write startProduction=true numLeftInOrder=10
  plcsim client write locationName=dock`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("at least one name=value assignment is required")
			}
			return app.RunClientWrite(flags.options(), args)
		},
	}
}
