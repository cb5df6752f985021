package core

import (
	"github.com/go-zeromq/zmq4"

	"github.com/kzeller/plcsim/internal/metrics"
	"github.com/kzeller/plcsim/internal/wire"
)

// lockstepLoop serves the lock-step request/reply protocol. The transport
// demands exactly one reply per request, so unlike the UDP path a request
// the endpoint cannot interpret still gets a reply, an empty dictionary.
func (s *Server) lockstepLoop() {
	defer s.wg.Done()

	for {
		msg, err := s.lockstepSocket.Recv()
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.logger.Error("Lock-step receive error: %v", err)
			return
		}

		s.sink.Inc(metrics.LockstepRequests)
		reply := s.handleLockstep(msg.Bytes())

		if err := s.lockstepSocket.Send(zmq4.NewMsg(reply)); err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.logger.Error("Lock-step send error: %v", err)
			return
		}
	}
}

func (s *Server) handleLockstep(data []byte) []byte {
	req, err := wire.DecodeLockstepRequest(data)
	if err != nil {
		s.sink.Inc(metrics.LockstepMalformed)
		s.logger.Debug("Malformed lock-step request: %v", err)
		s.logger.LogHex("malformed lock-step request", data)
		return wire.EmptyReply()
	}

	switch req.Command {
	case "read":
		reply, err := wire.EncodeLockstepReadReply(s.store.Get(req.Keys))
		if err != nil {
			s.logger.Error("Failed to encode lock-step reply: %v", err)
			return wire.EmptyReply()
		}
		s.logger.LogRequest("lockstep", "", 0, len(req.Keys), 0, nil)
		return reply
	case "write":
		if ev := s.store.Apply(req.KeyValues); ev != nil {
			s.sink.Add(metrics.WritesApplied, uint64(len(ev.Changed)))
		}
		s.logger.LogRequest("lockstep", "", 0, 0, len(req.KeyValues), nil)
		return wire.EmptyReply()
	default:
		return wire.EmptyReply()
	}
}
