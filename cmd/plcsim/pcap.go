package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kzeller/plcsim/internal/app"
)

func newPcapCmd() *cobra.Command {
	var requestPort int
	var notifyPort int

	cmd := &cobra.Command{
		Use:   "pcap summary <file>",
		Short: "Analyze captured signal-exchange traffic",
	}

	summaryCmd := &cobra.Command{
		Use:   "summary <file>",
		Short: "Summarize requests, replies, and notifications in a capture",
		Example: `  plcsim pcap summary exchange.pcap
  plcsim pcap summary --request-port 7000 exchange.pcap`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			if len(args) != 1 {
				return fmt.Errorf("exactly one capture file is required")
			}
			return app.RunPcapSummary(app.PcapOptions{
				Path:        args[0],
				RequestPort: requestPort,
				NotifyPort:  notifyPort,
			})
		},
	}
	summaryCmd.Flags().IntVar(&requestPort, "request-port", 5555, "Endpoint request port in the capture")
	summaryCmd.Flags().IntVar(&notifyPort, "notify-port", 0, "Endpoint notify port in the capture (default request port + 1)")

	cmd.AddCommand(summaryCmd)
	return cmd
}
