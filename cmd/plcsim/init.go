package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kzeller/plcsim/internal/config"
)

func newInitCmd() *cobra.Command {
	var outPath string
	var noForm bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter config file",
		Long: `Create a plcsim config file. By default an interactive form asks for
the endpoint name, ports, and controller address; --no-form writes the
built-in defaults directly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists, not overwriting", outPath)
			}

			if noForm {
				if err := config.WriteDefaultServerConfig(outPath); err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "Wrote %s\n", outPath)
				return nil
			}

			cfg, err := runInitForm()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			if err := os.WriteFile(outPath, data, 0644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(os.Stdout, "Wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "plcsim.yaml", "Output config path")
	cmd.Flags().BoolVar(&noForm, "no-form", false, "Write defaults without the interactive form")
	return cmd
}

func runInitForm() (*config.ServerConfig, error) {
	cfg := config.CreateDefaultServerConfig()

	name := cfg.Server.Name
	requestPort := strconv.Itoa(cfg.Server.RequestPort)
	controllerAddr := "127.0.0.1:6556"
	lockstep := true

	validatePort := func(s string) error {
		port, err := strconv.Atoi(s)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("port must be a number between 1 and 65535")
		}
		return nil
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Endpoint name").
				Description("Shown in logs and metrics.").
				Value(&name),
			huh.NewInput().
				Title("Request port").
				Description("UDP port for read/write requests. Notifications leave from the next port up.").
				Validate(validatePort).
				Value(&requestPort),
			huh.NewInput().
				Title("Controller address").
				Description("host:port change notifications are sent to. Leave empty to disable.").
				Value(&controllerAddr),
			huh.NewConfirm().
				Title("Enable lock-step socket?").
				Description("Serve the same signal table over a strict request/reply socket.").
				Value(&lockstep),
		),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}

	cfg.Server.Name = name
	cfg.Server.RequestPort, _ = strconv.Atoi(requestPort)
	cfg.Server.NotifyPort = cfg.Server.RequestPort + 1
	cfg.Server.ControllerAddr = controllerAddr
	cfg.Server.EnableLockstep = &lockstep

	if err := config.ValidateServerConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
