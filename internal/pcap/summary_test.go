package pcap

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

const (
	testRequestPort = 5555
	testNotifyPort  = 5556
)

// writeTestCapture builds a pcap file holding the given UDP payloads. Each
// entry is sent from srcPort to dstPort on loopback addresses.
func writeTestCapture(t *testing.T, datagrams []struct {
	srcPort int
	dstPort int
	payload string
}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.pcap")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create capture file: %v", err)
	}
	defer f.Close()

	writer := pcapgo.NewWriter(f)
	if err := writer.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		t.Fatalf("Failed to write file header: %v", err)
	}

	for i, d := range datagrams {
		eth := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
			DstMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ip := &layers.IPv4{
			Version:  4,
			TTL:      64,
			Protocol: layers.IPProtocolUDP,
			SrcIP:    net.IP{127, 0, 0, 1},
			DstIP:    net.IP{127, 0, 0, 1},
		}
		udp := &layers.UDP{
			SrcPort: layers.UDPPort(d.srcPort),
			DstPort: layers.UDPPort(d.dstPort),
		}
		if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
			t.Fatalf("Failed to set checksum layer: %v", err)
		}

		buf := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
		if err := gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(d.payload)); err != nil {
			t.Fatalf("Failed to serialize packet %d: %v", i, err)
		}

		ci := gopacket.CaptureInfo{
			Timestamp:     time.Unix(int64(1700000000+i), 0),
			CaptureLength: len(buf.Bytes()),
			Length:        len(buf.Bytes()),
		}
		if err := writer.WritePacket(ci, buf.Bytes()); err != nil {
			t.Fatalf("Failed to write packet %d: %v", i, err)
		}
	}
	return path
}

func TestSummarizeClassifiesTraffic(t *testing.T) {
	path := writeTestCapture(t, []struct {
		srcPort int
		dstPort int
		payload string
	}{
		{40000, testRequestPort, `{"seqid": 1, "timestamp": 1, "writevalues": {"valve": true}}`},
		{testRequestPort, 40000, `{"seqid": 1, "timestamp": 2}`},
		{40000, testRequestPort, `{"seqid": 2, "timestamp": 3, "read": ["valve"]}`},
		{testRequestPort, 40000, `{"seqid": 2, "timestamp": 4, "readvalues": {"valve": true}}`},
		{testNotifyPort, 40001, `{"changevalues": {"valve": true}, "timestamp": 5}`},
		{40000, testRequestPort, `garbage`},
		{40002, 9999, `unrelated`},
	})

	summary, err := Summarize(path, testRequestPort, testNotifyPort)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if summary.Packets != 7 {
		t.Errorf("Expected 7 packets, got %d", summary.Packets)
	}
	if summary.Requests != 2 {
		t.Errorf("Expected 2 requests, got %d", summary.Requests)
	}
	if summary.Replies != 2 {
		t.Errorf("Expected 2 replies, got %d", summary.Replies)
	}
	if summary.Notifications != 1 {
		t.Errorf("Expected 1 notification, got %d", summary.Notifications)
	}
	if summary.Malformed != 1 {
		t.Errorf("Expected 1 malformed, got %d", summary.Malformed)
	}
	if summary.OtherUDP != 1 {
		t.Errorf("Expected 1 other UDP, got %d", summary.OtherUDP)
	}
	if summary.MaxRequestSeqID != 2 || summary.MaxReplySeqID != 2 {
		t.Errorf("Unexpected max seqids: %d, %d", summary.MaxRequestSeqID, summary.MaxReplySeqID)
	}
	// valve appears in the write, the read, the readvalues, and the
	// notification.
	if summary.SignalCounts["valve"] != 4 {
		t.Errorf("Expected valve counted 4 times, got %d", summary.SignalCounts["valve"])
	}
}

func TestSummarizeMissingFile(t *testing.T) {
	if _, err := Summarize(filepath.Join(t.TempDir(), "missing.pcap"), testRequestPort, testNotifyPort); err == nil {
		t.Error("Expected error for missing capture")
	}
}

func TestWriteReport(t *testing.T) {
	summary := &Summary{
		Packets:      3,
		Requests:     1,
		SignalCounts: map[string]int{"valve": 2},
	}
	var b strings.Builder
	summary.WriteReport(&b)
	if !strings.Contains(b.String(), "valve") {
		t.Errorf("Expected valve in report, got %q", b.String())
	}
	if !strings.Contains(b.String(), "Packets:       3") {
		t.Errorf("Expected packet count in report, got %q", b.String())
	}
}
