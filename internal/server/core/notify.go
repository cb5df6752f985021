package core

import (
	"fmt"

	"github.com/kzeller/plcsim/internal/metrics"
	"github.com/kzeller/plcsim/internal/signals"
	"github.com/kzeller/plcsim/internal/wire"
)

// SendNotification sends one change event to the configured controller
// address. Events that would not fit in a single datagram are split into
// several, all stamped with the event's timestamp.
func (s *Server) SendNotification(ev signals.ChangeEvent) error {
	if s.controllerAddr == nil {
		s.sink.Inc(metrics.NotificationsDropped)
		s.logger.Debug("Dropping notification with %d changes, no controller address", len(ev.Changed))
		return nil
	}

	parts, err := wire.SplitNotification(ev.Changed, ev.Timestamp, wire.MaxDatagramSize)
	if err != nil {
		s.sink.Inc(metrics.NotificationsDropped)
		return fmt.Errorf("encode notification: %w", err)
	}
	if len(parts) > 1 {
		s.sink.Inc(metrics.NotificationsSplit)
		s.logger.Verbose("Split notification with %d changes into %d datagrams", len(ev.Changed), len(parts))
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	for _, part := range parts {
		if len(part) > wire.MaxDatagramSize {
			s.sink.Inc(metrics.NotificationsDropped)
			s.logger.Error("Dropping unsplittable notification part of %d bytes", len(part))
			continue
		}
		if _, err := s.notifyConn.WriteToUDP(part, s.controllerAddr); err != nil {
			s.sink.Inc(metrics.NotificationsDropped)
			return fmt.Errorf("send notification to %s: %w", s.controllerAddr, err)
		}
		s.sink.Inc(metrics.NotificationsSent)
	}
	return nil
}
