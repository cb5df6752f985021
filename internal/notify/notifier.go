package notify

// Change notification delivery, decoupled from signal mutation.
//
// The notifier sits between the signal store and a transport sender. Store
// commits enqueue events without blocking; a single drain goroutine forwards
// them to the sender in commit order. Delivery is best-effort to match the
// unreliable transport underneath: a full queue, a missing sender or a send
// failure drops the event with a logged error and no retry.

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kzeller/plcsim/internal/logging"
	"github.com/kzeller/plcsim/internal/signals"
)

// Sender transmits one change notification.
type Sender interface {
	SendNotification(ev signals.ChangeEvent) error
}

const queueCapacity = 128

// Notifier queues change events and delivers them sequentially.
type Notifier struct {
	logger *logging.Logger
	queue  chan signals.ChangeEvent

	senderMu sync.RWMutex
	sender   Sender

	dropped atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewNotifier creates a notifier. Call SetSender before Start to avoid
// dropping the initial snapshot event.
func NewNotifier(logger *logging.Logger) *Notifier {
	ctx, cancel := context.WithCancel(context.Background())
	return &Notifier{
		logger: logger,
		queue:  make(chan signals.ChangeEvent, queueCapacity),
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetSender registers the transport sender that receives drained events.
func (n *Notifier) SetSender(s Sender) {
	n.senderMu.Lock()
	defer n.senderMu.Unlock()
	n.sender = s
}

// SignalsChanged implements signals.Observer. It never blocks; when the
// queue is full the event is dropped.
func (n *Notifier) SignalsChanged(ev signals.ChangeEvent) {
	select {
	case n.queue <- ev:
	default:
		n.dropped.Add(1)
		n.logger.Error("notification queue full, dropping event with %d keys at %d", len(ev.Changed), ev.Timestamp)
	}
}

// Start launches the delivery goroutine.
func (n *Notifier) Start() {
	n.wg.Add(1)
	go n.deliverLoop()
}

// Stop halts delivery and waits for the delivery goroutine to exit. Events
// still queued are discarded.
func (n *Notifier) Stop() {
	n.cancel()
	n.wg.Wait()
}

// Dropped returns the number of events dropped so far.
func (n *Notifier) Dropped() uint64 {
	return n.dropped.Load()
}

func (n *Notifier) deliverLoop() {
	defer n.wg.Done()

	for {
		select {
		case <-n.ctx.Done():
			return
		case ev := <-n.queue:
			n.deliver(ev)
		}
	}
}

func (n *Notifier) deliver(ev signals.ChangeEvent) {
	n.senderMu.RLock()
	sender := n.sender
	n.senderMu.RUnlock()

	if sender == nil {
		n.dropped.Add(1)
		n.logger.Error("no notification sender registered, dropping event at %d", ev.Timestamp)
		return
	}
	if err := sender.SendNotification(ev); err != nil {
		n.dropped.Add(1)
		n.logger.Error("send notification at %d: %v", ev.Timestamp, err)
	}
}
