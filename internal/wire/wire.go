package wire

// JSON wire format shared by the UDP and lock-step protocols.
//
// UDP request (controller -> PLC):
//   {"seqid": uint64, "read": [string]?, "writevalues": {string: any}?, "timestamp": uint64}
// UDP reply (PLC -> controller, same socket, originating address):
//   {"seqid": uint64, "readvalues": {string: any}?, "timestamp": uint64}
// UDP notification (PLC -> controller, request_port+1):
//   {"changevalues": {string: any}, "timestamp": uint64}
// Lock-step request/reply:
//   {"command": "read", "keys": [string]} -> {"keyvalues": {string: any}}
//   {"command": "write", "keyvalues": {string: any}} -> {}

import (
	"encoding/json"
	"fmt"
)

// MaxDatagramSize bounds every framed message on both protocols.
const MaxDatagramSize = 10240

// Request is a decoded UDP request.
type Request struct {
	SeqID       uint64
	Timestamp   uint64
	Read        []string
	HasRead     bool
	WriteValues map[string]any
}

// Reply is a decoded UDP reply (controller side).
type Reply struct {
	SeqID         uint64
	Timestamp     uint64
	ReadValues    map[string]any
	HasReadValues bool
}

// Notification is a decoded change notification.
type Notification struct {
	ChangeValues map[string]any `json:"changevalues"`
	Timestamp    uint64         `json:"timestamp"`
}

// LockstepRequest is a decoded lock-step request.
type LockstepRequest struct {
	Command   string
	Keys      []string
	KeyValues map[string]any
}

// DecodeRequest parses a UDP request datagram. The root must be a JSON
// dictionary with unsigned 64-bit seqid and timestamp fields; anything else
// is an error and the caller drops the datagram.
func DecodeRequest(data []byte) (*Request, error) {
	if len(data) > MaxDatagramSize {
		return nil, fmt.Errorf("datagram size %d exceeds limit %d", len(data), MaxDatagramSize)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}

	req := &Request{}

	raw, ok := fields["seqid"]
	if !ok {
		return nil, fmt.Errorf("request missing seqid")
	}
	if err := json.Unmarshal(raw, &req.SeqID); err != nil {
		return nil, fmt.Errorf("request seqid: %w", err)
	}

	raw, ok = fields["timestamp"]
	if !ok {
		return nil, fmt.Errorf("request missing timestamp")
	}
	if err := json.Unmarshal(raw, &req.Timestamp); err != nil {
		return nil, fmt.Errorf("request timestamp: %w", err)
	}

	if raw, ok = fields["read"]; ok {
		if err := json.Unmarshal(raw, &req.Read); err != nil {
			return nil, fmt.Errorf("request read: %w", err)
		}
		req.HasRead = true
	}

	if raw, ok = fields["writevalues"]; ok {
		if err := json.Unmarshal(raw, &req.WriteValues); err != nil {
			return nil, fmt.Errorf("request writevalues: %w", err)
		}
	}

	return req, nil
}

// EncodeRequest builds a UDP request datagram (controller side).
func EncodeRequest(req *Request) ([]byte, error) {
	out := map[string]any{
		"seqid":     req.SeqID,
		"timestamp": req.Timestamp,
	}
	if req.HasRead {
		out["read"] = req.Read
	}
	if req.WriteValues != nil {
		out["writevalues"] = req.WriteValues
	}
	return json.Marshal(out)
}

// EncodeReply builds a UDP reply. readValues is included exactly when the
// request carried a read field, even when empty.
func EncodeReply(seqid, timestamp uint64, readValues map[string]any, includeReadValues bool) ([]byte, error) {
	out := map[string]any{
		"seqid":     seqid,
		"timestamp": timestamp,
	}
	if includeReadValues {
		if readValues == nil {
			readValues = map[string]any{}
		}
		out["readvalues"] = readValues
	}
	return json.Marshal(out)
}

// DecodeReply parses a UDP reply datagram (controller side).
func DecodeReply(data []byte) (*Reply, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("parse reply: %w", err)
	}

	rep := &Reply{}

	raw, ok := fields["seqid"]
	if !ok {
		return nil, fmt.Errorf("reply missing seqid")
	}
	if err := json.Unmarshal(raw, &rep.SeqID); err != nil {
		return nil, fmt.Errorf("reply seqid: %w", err)
	}

	raw, ok = fields["timestamp"]
	if !ok {
		return nil, fmt.Errorf("reply missing timestamp")
	}
	if err := json.Unmarshal(raw, &rep.Timestamp); err != nil {
		return nil, fmt.Errorf("reply timestamp: %w", err)
	}

	if raw, ok = fields["readvalues"]; ok {
		if err := json.Unmarshal(raw, &rep.ReadValues); err != nil {
			return nil, fmt.Errorf("reply readvalues: %w", err)
		}
		rep.HasReadValues = true
	}

	return rep, nil
}

// EncodeNotification builds one notification datagram.
func EncodeNotification(changeValues map[string]any, timestamp uint64) ([]byte, error) {
	return json.Marshal(Notification{ChangeValues: changeValues, Timestamp: timestamp})
}

// DecodeNotification parses a notification datagram (controller side).
func DecodeNotification(data []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("parse notification: %w", err)
	}
	if n.ChangeValues == nil {
		return nil, fmt.Errorf("notification missing changevalues")
	}
	return &n, nil
}

// DecodeLockstepRequest parses a lock-step request frame.
func DecodeLockstepRequest(data []byte) (*LockstepRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("parse lockstep request: %w", err)
	}

	req := &LockstepRequest{}

	raw, ok := fields["command"]
	if !ok {
		return nil, fmt.Errorf("lockstep request missing command")
	}
	if err := json.Unmarshal(raw, &req.Command); err != nil {
		return nil, fmt.Errorf("lockstep command: %w", err)
	}

	switch req.Command {
	case "read":
		raw, ok = fields["keys"]
		if !ok {
			return nil, fmt.Errorf("read command missing keys")
		}
		if err := json.Unmarshal(raw, &req.Keys); err != nil {
			return nil, fmt.Errorf("read keys: %w", err)
		}
	case "write":
		raw, ok = fields["keyvalues"]
		if !ok {
			return nil, fmt.Errorf("write command missing keyvalues")
		}
		if err := json.Unmarshal(raw, &req.KeyValues); err != nil {
			return nil, fmt.Errorf("write keyvalues: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown command %q", req.Command)
	}

	return req, nil
}

// EncodeLockstepReadReply builds a lock-step read reply.
func EncodeLockstepReadReply(keyValues map[string]any) ([]byte, error) {
	if keyValues == nil {
		keyValues = map[string]any{}
	}
	return json.Marshal(map[string]any{"keyvalues": keyValues})
}

// EmptyReply is the lock-step reply for writes and for any request the
// endpoint cannot interpret. The transport demands exactly one reply per
// request, so even garbage gets this back.
func EmptyReply() []byte {
	return []byte("{}")
}
