package directory

import (
	"context"
	"sync"
	"time"

	"github.com/chadrockey/ros/pkg/xmlrpc"
)

// PollDispatcher is a reference xmlrpc.RPCDispatcher: it polls every
// registered DispatchSource on a ticker rather than watching real
// socket readiness, since this repo's RPC transport is out of scope.
// Grounded on the teacher's ticker-driven background-loop idiom
// (pkg/service.DeviceService.runStaleConnectionReaper).
type PollDispatcher struct {
	mu       sync.Mutex
	sources  map[xmlrpc.DispatchSource]xmlrpc.EventMask
	interval time.Duration
}

// NewPollDispatcher constructs a PollDispatcher that checks its sources
// every interval once Run is started.
func NewPollDispatcher(interval time.Duration) *PollDispatcher {
	return &PollDispatcher{
		sources:  make(map[xmlrpc.DispatchSource]xmlrpc.EventMask),
		interval: interval,
	}
}

// AddSource registers src to be polled until it reports done.
func (d *PollDispatcher) AddSource(src xmlrpc.DispatchSource, mask xmlrpc.EventMask) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sources[src] = mask
}

// RemoveSource unregisters src.
func (d *PollDispatcher) RemoveSource(src xmlrpc.DispatchSource) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sources, src)
}

// Run drains registered sources on a ticker until ctx is cancelled.
func (d *PollDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.pollOnce()
		}
	}
}

func (d *PollDispatcher) pollOnce() {
	d.mu.Lock()
	sources := make([]xmlrpc.DispatchSource, 0, len(d.sources))
	for src := range d.sources {
		sources = append(sources, src)
	}
	d.mu.Unlock()

	for _, src := range sources {
		if src.Check() {
			d.RemoveSource(src)
		}
	}
}
