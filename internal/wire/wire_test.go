package wire

import (
	"encoding/json"
	"strings"
	"testing"
)

// Test request decoding accepts the documented shape and rejects
// anything the endpoint must drop.
func TestDecodeRequest(t *testing.T) {
	data := []byte(`{"seqid": 7, "timestamp": 123, "read": ["a", "b"], "writevalues": {"c": 1}}`)
	req, err := DecodeRequest(data)
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}
	if req.SeqID != 7 {
		t.Errorf("Expected seqid 7, got %d", req.SeqID)
	}
	if req.Timestamp != 123 {
		t.Errorf("Expected timestamp 123, got %d", req.Timestamp)
	}
	if !req.HasRead || len(req.Read) != 2 {
		t.Errorf("Expected read [a b], got %v (has=%v)", req.Read, req.HasRead)
	}
	if req.WriteValues["c"] != float64(1) {
		t.Errorf("Expected writevalues c=1, got %v", req.WriteValues)
	}
}

func TestDecodeRequestEmptyReadList(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"seqid": 1, "timestamp": 1, "read": []}`))
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}
	if !req.HasRead {
		t.Error("Expected HasRead true for empty read list")
	}
	if len(req.Read) != 0 {
		t.Errorf("Expected empty read list, got %v", req.Read)
	}
}

func TestDecodeRequestRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", `hello`},
		{"array root", `[1, 2]`},
		{"string root", `"seqid"`},
		{"missing seqid", `{"timestamp": 1}`},
		{"missing timestamp", `{"seqid": 1}`},
		{"negative seqid", `{"seqid": -1, "timestamp": 1}`},
		{"float seqid", `{"seqid": 1.5, "timestamp": 1}`},
		{"string seqid", `{"seqid": "1", "timestamp": 1}`},
		{"read not a list", `{"seqid": 1, "timestamp": 1, "read": "a"}`},
		{"writevalues not a dict", `{"seqid": 1, "timestamp": 1, "writevalues": [1]}`},
	}
	for _, tc := range cases {
		if _, err := DecodeRequest([]byte(tc.data)); err == nil {
			t.Errorf("Expected error for %s", tc.name)
		}
	}
}

func TestDecodeRequestMaxSeqID(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"seqid": 18446744073709551615, "timestamp": 1}`))
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}
	if req.SeqID != 18446744073709551615 {
		t.Errorf("Expected max uint64 seqid, got %d", req.SeqID)
	}
}

func TestDecodeRequestOversized(t *testing.T) {
	big := `{"seqid": 1, "timestamp": 1, "writevalues": {"a": "` + strings.Repeat("x", MaxDatagramSize) + `"}}`
	if _, err := DecodeRequest([]byte(big)); err == nil {
		t.Error("Expected error for oversized datagram")
	}
}

func TestEncodeReplyReadValuesPresence(t *testing.T) {
	data, err := EncodeReply(3, 9, map[string]any{"a": true}, true)
	if err != nil {
		t.Fatalf("EncodeReply failed: %v", err)
	}
	rep, err := DecodeReply(data)
	if err != nil {
		t.Fatalf("DecodeReply failed: %v", err)
	}
	if rep.SeqID != 3 || rep.Timestamp != 9 {
		t.Errorf("Unexpected reply header: %+v", rep)
	}
	if !rep.HasReadValues || rep.ReadValues["a"] != true {
		t.Errorf("Expected readvalues a=true, got %+v", rep)
	}

	// A reply to a pure write carries no readvalues key at all.
	data, err = EncodeReply(4, 10, nil, false)
	if err != nil {
		t.Fatalf("EncodeReply failed: %v", err)
	}
	if strings.Contains(string(data), "readvalues") {
		t.Errorf("Expected no readvalues key, got %s", data)
	}

	// An empty read list still gets an (empty) readvalues dictionary.
	data, err = EncodeReply(5, 11, nil, true)
	if err != nil {
		t.Fatalf("EncodeReply failed: %v", err)
	}
	rep, err = DecodeReply(data)
	if err != nil {
		t.Fatalf("DecodeReply failed: %v", err)
	}
	if !rep.HasReadValues || len(rep.ReadValues) != 0 {
		t.Errorf("Expected empty readvalues dict, got %+v", rep)
	}
}

func TestNotificationRoundTrip(t *testing.T) {
	data, err := EncodeNotification(map[string]any{"valve": true}, 42)
	if err != nil {
		t.Fatalf("EncodeNotification failed: %v", err)
	}
	n, err := DecodeNotification(data)
	if err != nil {
		t.Fatalf("DecodeNotification failed: %v", err)
	}
	if n.Timestamp != 42 || n.ChangeValues["valve"] != true {
		t.Errorf("Unexpected notification: %+v", n)
	}
}

func TestDecodeLockstepRequest(t *testing.T) {
	req, err := DecodeLockstepRequest([]byte(`{"command": "read", "keys": ["a"]}`))
	if err != nil {
		t.Fatalf("DecodeLockstepRequest failed: %v", err)
	}
	if req.Command != "read" || len(req.Keys) != 1 || req.Keys[0] != "a" {
		t.Errorf("Unexpected read request: %+v", req)
	}

	req, err = DecodeLockstepRequest([]byte(`{"command": "write", "keyvalues": {"a": 5}}`))
	if err != nil {
		t.Fatalf("DecodeLockstepRequest failed: %v", err)
	}
	if req.Command != "write" || req.KeyValues["a"] != float64(5) {
		t.Errorf("Unexpected write request: %+v", req)
	}

	bad := []string{
		`not json`,
		`{"keys": ["a"]}`,
		`{"command": "reboot"}`,
		`{"command": "read"}`,
		`{"command": "write"}`,
		`{"command": "write", "keyvalues": [1]}`,
	}
	for _, data := range bad {
		if _, err := DecodeLockstepRequest([]byte(data)); err == nil {
			t.Errorf("Expected error for %s", data)
		}
	}
}

func TestSplitNotificationSmallFitsWhole(t *testing.T) {
	parts, err := SplitNotification(map[string]any{"a": 1, "b": 2}, 7, MaxDatagramSize)
	if err != nil {
		t.Fatalf("SplitNotification failed: %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("Expected 1 part, got %d", len(parts))
	}
}

func TestSplitNotificationOversizedEvent(t *testing.T) {
	values := map[string]any{}
	for _, name := range []string{"a", "b", "c", "d"} {
		values[name] = strings.Repeat("x", 4000)
	}
	parts, err := SplitNotification(values, 7, MaxDatagramSize)
	if err != nil {
		t.Fatalf("SplitNotification failed: %v", err)
	}
	if len(parts) < 2 {
		t.Fatalf("Expected multiple parts, got %d", len(parts))
	}

	seen := map[string]any{}
	for _, part := range parts {
		if len(part) > MaxDatagramSize {
			t.Errorf("Part size %d exceeds limit", len(part))
		}
		var n Notification
		if err := json.Unmarshal(part, &n); err != nil {
			t.Fatalf("Part is not a valid notification: %v", err)
		}
		if n.Timestamp != 7 {
			t.Errorf("Expected timestamp 7 on every part, got %d", n.Timestamp)
		}
		for k, v := range n.ChangeValues {
			seen[k] = v
		}
	}
	if len(seen) != len(values) {
		t.Errorf("Expected all %d keys across parts, got %d", len(values), len(seen))
	}
}

func TestSplitNotificationSingleHugeValue(t *testing.T) {
	values := map[string]any{"blob": strings.Repeat("x", MaxDatagramSize+100)}
	parts, err := SplitNotification(values, 1, MaxDatagramSize)
	if err != nil {
		t.Fatalf("SplitNotification failed: %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("Expected 1 oversized part, got %d", len(parts))
	}
	if len(parts[0]) <= MaxDatagramSize {
		t.Errorf("Expected oversized part, got %d bytes", len(parts[0]))
	}
}
