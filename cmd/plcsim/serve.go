package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kzeller/plcsim/internal/app"
	"github.com/kzeller/plcsim/internal/config"
)

type serveFlags struct {
	configPath     string
	listenIP       string
	requestPort    int
	notifyPort     int
	controllerAddr string
	noLockstep     bool
	logFormat      string
	logLevel       string
	logEvery       int
}

func newServeCmd() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the signal exchange endpoint",
		Long: `Run plcsim as a signal exchange endpoint that controllers can talk to.

The endpoint listens on a UDP request port (default 5555) for read/write
requests, sends change notifications from the next port up to the configured
controller address, and serves the same signal table over a lock-step
request/reply socket.

Configuration is loaded from a YAML file when --config is given; flags
override the file. Press Ctrl+C to stop the endpoint gracefully.`,
		Example: `  # Start with defaults
  plcsim serve

  # Custom ports, notifications to a controller
  plcsim serve --request-port 7000 --controller-addr 192.168.1.10:6556

  # Use a config file with initial signal values
  plcsim serve --config ./plcsim.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			err := app.RunServer(app.ServerOptions{
				ConfigPath:     flags.configPath,
				ListenIP:       flags.listenIP,
				RequestPort:    flags.requestPort,
				NotifyPort:     flags.notifyPort,
				ControllerAddr: flags.controllerAddr,
				NoLockstep:     flags.noLockstep,
				LogFormat:      flags.logFormat,
				LogLevel:       flags.logLevel,
				LogEvery:       flags.logEvery,
			})
			if err != nil {
				os.Exit(2)
			}
			return nil
		},
	}

	registerServeFlags(cmd, flags)

	cmd.AddCommand(newServeValidateCmd())
	cmd.AddCommand(newServePrintDefaultCmd())

	return cmd
}

func registerServeFlags(cmd *cobra.Command, flags *serveFlags) {
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Server config file path")
	cmd.Flags().StringVar(&flags.listenIP, "listen-ip", "", "Listen IP address (default \"0.0.0.0\")")
	cmd.Flags().IntVar(&flags.requestPort, "request-port", 0, "UDP request port (default 5555)")
	cmd.Flags().IntVar(&flags.notifyPort, "notify-port", 0, "UDP notification port (default request port + 1)")
	cmd.Flags().StringVar(&flags.controllerAddr, "controller-addr", "", "host:port notifications are sent to")
	cmd.Flags().BoolVar(&flags.noLockstep, "no-lockstep", false, "Disable the lock-step request/reply socket")
	cmd.Flags().StringVar(&flags.logFormat, "log-format", "", "Log format: text|json")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level: silent|error|info|verbose|debug")
	cmd.Flags().IntVar(&flags.logEvery, "log-every", 0, "Log every Nth request on the console")
}

func newServeValidateCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "validate-config",
		Short: "Validate a server config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath == "" {
				cfgPath = "plcsim.yaml"
			}
			if _, err := config.LoadServerConfig(cfgPath); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Config OK: %s\n", cfgPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "Server config file path")
	return cmd
}

func newServePrintDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print-default-config",
		Short: "Print a default server config",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(config.CreateDefaultServerConfig())
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			fmt.Fprintln(os.Stdout, string(out))
			return nil
		},
	}
}
