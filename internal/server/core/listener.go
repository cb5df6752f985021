package core

import (
	"fmt"
	"net"
	"time"

	"github.com/go-zeromq/zmq4"

	"github.com/kzeller/plcsim/internal/errors"
)

// Start binds every configured endpoint and launches the serving loops.
func (s *Server) Start() error {
	if s.config.Metrics.Enable {
		if err := s.startMetricsListener(); err != nil {
			return err
		}
	}

	reqAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", s.config.Server.ListenIP, s.config.Server.RequestPort))
	if err != nil {
		return fmt.Errorf("resolve request address: %w", err)
	}
	s.requestConn, err = net.ListenUDP("udp", reqAddr)
	if err != nil {
		s.abortStartup()
		return errors.WrapNetworkError(err, reqAddr.String())
	}
	s.logger.Info("Request server listening on %s", s.requestConn.LocalAddr())

	notifyAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", s.config.Server.ListenIP, s.config.Server.NotifyPort))
	if err != nil {
		return fmt.Errorf("resolve notify address: %w", err)
	}
	s.notifyConn, err = net.ListenUDP("udp", notifyAddr)
	if err != nil {
		s.abortStartup()
		return errors.WrapNetworkError(err, notifyAddr.String())
	}
	s.logger.Info("Notification socket bound on %s", s.notifyConn.LocalAddr())

	if s.config.Server.ControllerAddr != "" {
		s.controllerAddr, err = net.ResolveUDPAddr("udp", s.config.Server.ControllerAddr)
		if err != nil {
			s.abortStartup()
			return fmt.Errorf("resolve controller address: %w", err)
		}
		s.logger.Info("Notifications will be sent to %s", s.controllerAddr)
	} else {
		s.logger.Verbose("No controller address configured, notifications will be dropped")
	}

	if s.config.Server.EnableLockstep != nil && *s.config.Server.EnableLockstep {
		s.lockstepSocket = zmq4.NewRep(s.ctx)
		if err := s.lockstepSocket.Listen(s.config.Server.LockstepEndpoint); err != nil {
			s.abortStartup()
			return errors.WrapNetworkError(err, s.config.Server.LockstepEndpoint)
		}
		s.logger.Info("Lock-step server listening on %s", s.config.Server.LockstepEndpoint)

		s.wg.Add(1)
		go s.lockstepLoop()
	}

	if s.notifier != nil {
		s.notifier.SetSender(s)
	}

	s.wg.Add(1)
	go s.requestLoop()

	return nil
}

// RequestAddr returns the bound request socket address after Start.
func (s *Server) RequestAddr() *net.UDPAddr {
	if s.requestConn == nil {
		return nil
	}
	if addr, ok := s.requestConn.LocalAddr().(*net.UDPAddr); ok {
		return addr
	}
	return nil
}

// NotifyAddr returns the bound notification socket address after Start.
func (s *Server) NotifyAddr() *net.UDPAddr {
	if s.notifyConn == nil {
		return nil
	}
	if addr, ok := s.notifyConn.LocalAddr().(*net.UDPAddr); ok {
		return addr
	}
	return nil
}

// LockstepAddr returns the bound lock-step endpoint after Start, or the
// empty string when the lock-step adapter is disabled.
func (s *Server) LockstepAddr() string {
	if s.lockstepSocket == nil {
		return ""
	}
	if addr := s.lockstepSocket.Addr(); addr != nil {
		return fmt.Sprintf("tcp://%s", addr)
	}
	return s.config.Server.LockstepEndpoint
}

// Stop shuts down every serving loop and waits for them to exit.
func (s *Server) Stop() error {
	s.cancel()

	s.closeListeners()
	s.wg.Wait()

	s.logger.Info("Server stopped")
	return nil
}

// abortStartup unwinds a partially-started server when a later bind fails.
func (s *Server) abortStartup() {
	s.cancel()
	s.closeListeners()
	s.wg.Wait()
}

func (s *Server) closeListeners() {
	if s.requestConn != nil {
		s.requestConn.Close()
	}
	if s.lockstepSocket != nil {
		s.lockstepSocket.Close()
	}
	if s.notifyConn != nil {
		s.notifyConn.Close()
	}
	if s.metricsListener != nil {
		s.metricsListener.Close()
	}
}

func (s *Server) startMetricsListener() error {
	addr := fmt.Sprintf("%s:%d", s.config.Metrics.ListenIP, s.config.Metrics.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.WrapNetworkError(err, addr)
	}
	s.metricsListener = listener
	s.wg.Add(1)
	go s.metricsLoop()
	return nil
}

func (s *Server) metricsLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.metricsListener.Accept()
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		fmt.Fprint(conn, s.sink.Render(s.config.Server.Name))
		_ = conn.Close()
	}
}
