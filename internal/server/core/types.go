package core

import (
	"context"
	"net"
	"sync"

	"github.com/go-zeromq/zmq4"

	"github.com/kzeller/plcsim/internal/config"
	"github.com/kzeller/plcsim/internal/logging"
	"github.com/kzeller/plcsim/internal/metrics"
	"github.com/kzeller/plcsim/internal/notify"
	"github.com/kzeller/plcsim/internal/signals"
)

// Server hosts the signal table behind the UDP request/reply adapter, the
// UDP notification adapter, and the lock-step request/reply adapter.
type Server struct {
	config          *config.ServerConfig
	logger          *logging.Logger
	store           *signals.Store
	notifier        *notify.Notifier
	sink            *metrics.Sink
	requestConn     *net.UDPConn
	notifyConn      *net.UDPConn
	controllerAddr  *net.UDPAddr
	lockstepSocket  zmq4.Socket
	metricsListener net.Listener

	// replyClock stamps UDP replies. Reply timestamps must strictly
	// increase independently of the store's event clock.
	replyClock *signals.Clock

	notifyMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}
