package controller

// Controller-side client for the UDP request/reply protocol.

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kzeller/plcsim/internal/logging"
	"github.com/kzeller/plcsim/internal/signals"
	"github.com/kzeller/plcsim/internal/wire"
)

// Client reads and writes signals on a remote endpoint. One request is in
// flight at a time; replies with a stale seqid are discarded.
type Client struct {
	conn    *net.UDPConn
	logger  *logging.Logger
	clock   *signals.Clock
	seq     atomic.Uint64
	timeout time.Duration
	mu      sync.Mutex
}

// Dial connects a client to the endpoint's request port.
func Dial(addr string, logger *logging.Logger) (*Client, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve endpoint address: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("dial endpoint: %w", err)
	}
	return &Client{
		conn:    conn,
		logger:  logger,
		clock:   signals.NewClock(),
		timeout: 2 * time.Second,
	}, nil
}

// Close releases the client's socket.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Read fetches the current values of the named signals. Signals the endpoint
// does not hold are omitted from the result.
func (c *Client) Read(ctx context.Context, names []string) (map[string]any, error) {
	req := &wire.Request{
		SeqID:     c.seq.Add(1),
		Timestamp: c.clock.Now(),
		Read:      names,
		HasRead:   true,
	}
	reply, err := c.exchange(ctx, req)
	if err != nil {
		return nil, err
	}
	if !reply.HasReadValues {
		return nil, fmt.Errorf("reply %d missing readvalues", reply.SeqID)
	}
	return reply.ReadValues, nil
}

// Write applies a batch of signal values on the endpoint.
func (c *Client) Write(ctx context.Context, values map[string]any) error {
	req := &wire.Request{
		SeqID:       c.seq.Add(1),
		Timestamp:   c.clock.Now(),
		WriteValues: values,
	}
	_, err := c.exchange(ctx, req)
	return err
}

func (c *Client) exchange(ctx context.Context, req *wire.Request) (*wire.Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := wire.EncodeRequest(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	if len(data) > wire.MaxDatagramSize {
		return nil, fmt.Errorf("request size %d exceeds limit %d", len(data), wire.MaxDatagramSize)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if _, err := c.conn.Write(data); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	buf := make([]byte, wire.MaxDatagramSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_ = c.conn.SetReadDeadline(deadline)
		n, err := c.conn.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("receive reply for seqid %d: %w", req.SeqID, err)
		}
		reply, err := wire.DecodeReply(buf[:n])
		if err != nil {
			c.logger.Debug("Discarding undecodable reply: %v", err)
			continue
		}
		if reply.SeqID != req.SeqID {
			c.logger.Debug("Discarding reply with stale seqid %d, waiting for %d", reply.SeqID, req.SeqID)
			continue
		}
		return reply, nil
	}
}
