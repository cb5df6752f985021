package controller

import (
	"context"
	"fmt"
	"net"
	"reflect"
	"sync"
	"time"

	"github.com/kzeller/plcsim/internal/logging"
	"github.com/kzeller/plcsim/internal/wire"
)

// Listener receives change notifications and mirrors them into a local
// state map, the controller's view of the endpoint's signal table.
type Listener struct {
	conn   *net.UDPConn
	logger *logging.Logger

	mu    sync.RWMutex
	state map[string]any

	events chan wire.Notification

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewListener binds a notification listener on addr, typically the address
// the endpoint's controller_addr points at.
func NewListener(addr string, logger *logging.Logger) (*Listener, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve listen address: %w", err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("bind notification listener: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Listener{
		conn:   conn,
		logger: logger,
		state:  map[string]any{},
		events: make(chan wire.Notification, 128),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Addr returns the bound listener address.
func (l *Listener) Addr() *net.UDPAddr {
	if addr, ok := l.conn.LocalAddr().(*net.UDPAddr); ok {
		return addr
	}
	return nil
}

// Events exposes received notifications. The channel is bounded; when no
// one drains it, notifications still update the state map.
func (l *Listener) Events() <-chan wire.Notification {
	return l.events
}

// State returns a snapshot of the mirrored signal table.
func (l *Listener) State() map[string]any {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]any, len(l.state))
	for name, v := range l.state {
		out[name] = v
	}
	return out
}

// Start launches the receive loop.
func (l *Listener) Start() {
	l.wg.Add(1)
	go l.receiveLoop()
}

// Stop closes the socket and waits for the receive loop to exit.
func (l *Listener) Stop() {
	l.cancel()
	l.conn.Close()
	l.wg.Wait()
}

// WaitFor blocks until the mirrored value of name equals value or ctx ends.
// Polling matches the 50ms cadence the state map is refreshed at.
func (l *Listener) WaitFor(ctx context.Context, name string, value any) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		l.mu.RLock()
		current, ok := l.state[name]
		l.mu.RUnlock()
		if ok && reflect.DeepEqual(current, value) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *Listener) receiveLoop() {
	defer l.wg.Done()
	buf := make([]byte, wire.MaxDatagramSize+1)

	for {
		select {
		case <-l.ctx.Done():
			return
		default:
		}

		_ = l.conn.SetReadDeadline(time.Now().Add(1 * time.Second))
		n, addr, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if l.ctx.Err() != nil {
				return
			}
			l.logger.Error("Notification read error: %v", err)
			continue
		}

		notification, err := wire.DecodeNotification(buf[:n])
		if err != nil {
			l.logger.Debug("Dropping malformed notification from %s: %v", addr, err)
			continue
		}

		l.mu.Lock()
		for name, v := range notification.ChangeValues {
			l.state[name] = v
		}
		l.mu.Unlock()

		select {
		case l.events <- *notification:
		default:
			l.logger.Debug("Notification event queue full, state still updated")
		}
	}
}
