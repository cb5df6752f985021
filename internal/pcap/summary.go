package pcap

// Offline analysis of captured signal-exchange traffic.

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/kzeller/plcsim/internal/wire"
)

// Summary aggregates the signal-exchange datagrams found in a capture.
type Summary struct {
	Packets       int
	Requests      int
	Replies       int
	Notifications int
	Malformed     int
	OtherUDP      int

	// Per-signal observation counts across reads, writes, and
	// notifications.
	SignalCounts map[string]int

	// Highest seqid seen in each direction.
	MaxRequestSeqID uint64
	MaxReplySeqID   uint64
}

// Summarize reads a pcap file and classifies UDP datagrams by the endpoint's
// request and notify ports.
func Summarize(path string, requestPort, notifyPort int) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	defer f.Close()

	reader, err := pcapgo.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read capture header: %w", err)
	}

	summary := &Summary{SignalCounts: map[string]int{}}
	source := gopacket.NewPacketSource(reader, reader.LinkType())
	for packet := range source.Packets() {
		summary.Packets++
		udpLayer := packet.Layer(layers.LayerTypeUDP)
		if udpLayer == nil {
			continue
		}
		udp := udpLayer.(*layers.UDP)
		summary.classify(int(udp.SrcPort), int(udp.DstPort), udp.Payload, requestPort, notifyPort)
	}
	return summary, nil
}

func (s *Summary) classify(srcPort, dstPort int, payload []byte, requestPort, notifyPort int) {
	switch {
	case dstPort == requestPort:
		req, err := wire.DecodeRequest(payload)
		if err != nil {
			s.Malformed++
			return
		}
		s.Requests++
		if req.SeqID > s.MaxRequestSeqID {
			s.MaxRequestSeqID = req.SeqID
		}
		for _, name := range req.Read {
			s.SignalCounts[name]++
		}
		for name := range req.WriteValues {
			s.SignalCounts[name]++
		}

	case srcPort == requestPort:
		reply, err := wire.DecodeReply(payload)
		if err != nil {
			s.Malformed++
			return
		}
		s.Replies++
		if reply.SeqID > s.MaxReplySeqID {
			s.MaxReplySeqID = reply.SeqID
		}
		for name := range reply.ReadValues {
			s.SignalCounts[name]++
		}

	case srcPort == notifyPort:
		notification, err := wire.DecodeNotification(payload)
		if err != nil {
			s.Malformed++
			return
		}
		s.Notifications++
		for name := range notification.ChangeValues {
			s.SignalCounts[name]++
		}

	default:
		s.OtherUDP++
	}
}

// WriteReport renders the summary as plain text.
func (s *Summary) WriteReport(w io.Writer) {
	fmt.Fprintf(w, "Packets:       %d\n", s.Packets)
	fmt.Fprintf(w, "Requests:      %d (max seqid %d)\n", s.Requests, s.MaxRequestSeqID)
	fmt.Fprintf(w, "Replies:       %d (max seqid %d)\n", s.Replies, s.MaxReplySeqID)
	fmt.Fprintf(w, "Notifications: %d\n", s.Notifications)
	fmt.Fprintf(w, "Malformed:     %d\n", s.Malformed)
	fmt.Fprintf(w, "Other UDP:     %d\n", s.OtherUDP)

	if len(s.SignalCounts) == 0 {
		return
	}
	names := make([]string, 0, len(s.SignalCounts))
	for name := range s.SignalCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(w, "Signals:\n")
	for _, name := range names {
		fmt.Fprintf(w, "  %-30s %d\n", name, s.SignalCounts[name])
	}
}
