package core

import (
	"net"
	"time"

	"github.com/kzeller/plcsim/internal/metrics"
	"github.com/kzeller/plcsim/internal/wire"
)

// requestLoop serves the UDP request/reply protocol. Requests are handled
// one at a time in arrival order. Anything that does not parse as a valid
// request is dropped without a reply.
func (s *Server) requestLoop() {
	defer s.wg.Done()

	// Oversized datagrams must be detected, not truncated, so the read
	// buffer is one byte larger than the limit.
	buf := make([]byte, wire.MaxDatagramSize+1)

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		_ = s.requestConn.SetReadDeadline(time.Now().Add(1 * time.Second))
		n, addr, err := s.requestConn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if s.ctx.Err() != nil {
				return
			}
			s.logger.Error("Request read error: %v", err)
			continue
		}

		s.sink.Inc(metrics.RequestsReceived)

		if n > wire.MaxDatagramSize {
			s.sink.Inc(metrics.RequestsDropped)
			s.logger.Debug("Dropping oversized datagram from %s: %d bytes", addr, n)
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])

		req, err := wire.DecodeRequest(data)
		if err != nil {
			s.sink.Inc(metrics.RequestsDropped)
			s.logger.Debug("Dropping malformed datagram from %s: %v", addr, err)
			s.logger.LogHex("malformed request", data)
			continue
		}

		s.handleRequest(req, addr)
	}
}

// handleRequest applies writes before serving reads, so a request carrying
// both observes its own writes. The reply carries a readvalues dictionary
// exactly when the request carried a read list.
func (s *Server) handleRequest(req *wire.Request, addr *net.UDPAddr) {
	if len(req.WriteValues) > 0 {
		if ev := s.store.Apply(req.WriteValues); ev != nil {
			s.sink.Add(metrics.WritesApplied, uint64(len(ev.Changed)))
		}
	}

	var readValues map[string]any
	if req.HasRead {
		readValues = s.store.Get(req.Read)
	}

	reply, err := wire.EncodeReply(req.SeqID, s.replyClock.Now(), readValues, req.HasRead)
	if err != nil {
		s.logger.Error("Failed to encode reply for %s: %v", addr, err)
		s.logger.LogRequest("udp", addr.String(), req.SeqID, len(req.Read), len(req.WriteValues), err)
		return
	}

	if _, err := s.requestConn.WriteToUDP(reply, addr); err != nil {
		s.logger.Error("Reply write error to %s: %v", addr, err)
		s.logger.LogRequest("udp", addr.String(), req.SeqID, len(req.Read), len(req.WriteValues), err)
		return
	}

	s.sink.Inc(metrics.RepliesSent)
	s.logger.LogRequest("udp", addr.String(), req.SeqID, len(req.Read), len(req.WriteValues), nil)
}
