package app

import (
	"fmt"
	"os"

	"github.com/kzeller/plcsim/internal/pcap"
)

type PcapOptions struct {
	Path        string
	RequestPort int
	NotifyPort  int
}

// RunPcapSummary summarizes the signal-exchange traffic in a capture file.
func RunPcapSummary(opts PcapOptions) error {
	if opts.NotifyPort == 0 {
		opts.NotifyPort = opts.RequestPort + 1
	}
	summary, err := pcap.Summarize(opts.Path, opts.RequestPort, opts.NotifyPort)
	if err != nil {
		return fmt.Errorf("summarize %s: %w", opts.Path, err)
	}
	summary.WriteReport(os.Stdout)
	return nil
}
