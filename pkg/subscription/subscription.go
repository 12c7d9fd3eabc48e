package subscription

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/chadrockey/ros/pkg/callbackqueue"
	"github.com/chadrockey/ros/pkg/connection"
	"github.com/chadrockey/ros/pkg/log"
	"github.com/chadrockey/ros/pkg/negotiate"
	"github.com/chadrockey/ros/pkg/rosnode"
	"github.com/chadrockey/ros/pkg/stats"
	"github.com/chadrockey/ros/pkg/tcpros"
	"github.com/chadrockey/ros/pkg/transport"
)

// inboxEntry is one queued (bytes, connection_header) pair, tagged with
// the link it arrived on for logging purposes.
type inboxEntry struct {
	bytes []byte
	hdr   map[string]string
	link  *PublisherLink
}

// Subscription reconciles a topic's upstream publisher set, negotiates
// connections to new publishers, and fans incoming bytes out to
// registered callbacks.
type Subscription struct {
	Topic    string
	MD5Sum   string
	DataType string

	opts   Options
	logger log.Logger

	dropped      atomic.Bool
	shuttingDown atomic.Bool

	callbacksMu sync.RWMutex
	callbacks   []*CallbackInfo

	linksMu        sync.Mutex
	publisherLinks map[string]*PublisherLink

	pendingMu          sync.Mutex
	pendingConnections map[string]*PendingConnection

	wantedMu   sync.RWMutex
	wantedPubs map[string]bool

	backoffMu sync.Mutex
	backoffs  map[string]*connection.Backoff

	inboxMu       sync.Mutex
	inboxCond     *sync.Cond
	inbox         []inboxEntry
	workerStarted bool
	workerDone    chan struct{}

	statsMu sync.Mutex
	stats   *stats.TopicStats
}

// New constructs a Subscription in the non-dropped state. The worker
// goroutine (when opts.Threaded) is started lazily on the first
// registered callback, not here.
func New(topic, md5sum, dataType string, opts Options) *Subscription {
	if opts.MaxQueue < 0 {
		opts.MaxQueue = 0
	}
	if opts.Logger == nil {
		opts.Logger = log.NoopLogger{}
	}

	s := &Subscription{
		Topic:              topic,
		MD5Sum:             md5sum,
		DataType:           dataType,
		opts:               opts,
		logger:             opts.Logger,
		publisherLinks:     make(map[string]*PublisherLink),
		pendingConnections: make(map[string]*PendingConnection),
		wantedPubs:         make(map[string]bool),
		backoffs:           make(map[string]*connection.Backoff),
		stats:              &stats.TopicStats{Topic: topic},
	}
	s.inboxCond = sync.NewCond(&s.inboxMu)
	return s
}

// Threaded reports whether this subscription drains its inbox on a
// dedicated worker goroutine.
func (s *Subscription) Threaded() bool { return s.opts.Threaded }

// Dropped reports whether Drop has been called.
func (s *Subscription) Dropped() bool { return s.dropped.Load() }

// AddCallback registers a callback. Returns the CallbackInfo handle
// (needed by RemoveCallback, since Go interface/closure values are not
// generally comparable for identity) and false if the subscription is
// already dropped or helper is nil. queue may be nil, meaning the
// callback is invoked inline on the delivering goroutine instead of
// through a CallbackQueue.
func (s *Subscription) AddCallback(helper Helper, queue callbackqueue.CallbackQueue, queueSize int, tracked TrackedRef) (*CallbackInfo, bool) {
	if helper == nil || s.dropped.Load() {
		return nil, false
	}

	ci := NewCallbackInfo(helper, queue, queueSize, tracked)

	s.callbacksMu.Lock()
	s.callbacks = append(s.callbacks, ci)
	s.callbacksMu.Unlock()

	if s.opts.Threaded {
		s.startWorkerOnce()
	}
	return ci, true
}

// RemoveCallback removes a previously-registered callback by identity.
// Safe to call concurrently with delivery; in-flight invocations
// complete.
func (s *Subscription) RemoveCallback(ci *CallbackInfo) {
	s.callbacksMu.Lock()
	defer s.callbacksMu.Unlock()
	for i, c := range s.callbacks {
		if c == ci {
			s.callbacks = append(s.callbacks[:i], s.callbacks[i+1:]...)
			return
		}
	}
}

// PubUpdate reconciles the authoritative publisher URI list from the
// directory against the current publisher_links/pending_connections
// sets, negotiating new URIs and dropping/cancelling stale ones. The
// node's own URI is always filtered out first.
func (s *Subscription) PubUpdate(pubs []string) {
	if s.dropped.Load() {
		return
	}

	filtered := rosnode.FilterSelf(pubs, s.opts.SelfURI)
	wanted := make(map[string]bool, len(filtered))
	for _, u := range filtered {
		wanted[u] = true
	}

	s.wantedMu.Lock()
	s.wantedPubs = wanted
	s.wantedMu.Unlock()

	s.linksMu.Lock()
	var staleLinks []*PublisherLink
	for uri, link := range s.publisherLinks {
		if !wanted[uri] {
			staleLinks = append(staleLinks, link)
			delete(s.publisherLinks, uri)
		}
	}
	existingLinks := make(map[string]bool, len(s.publisherLinks))
	for uri := range s.publisherLinks {
		existingLinks[uri] = true
	}
	s.linksMu.Unlock()

	s.pendingMu.Lock()
	var stalePending []*PendingConnection
	for uri, pc := range s.pendingConnections {
		if !wanted[uri] {
			stalePending = append(stalePending, pc)
			delete(s.pendingConnections, uri)
		}
	}
	existingPending := make(map[string]bool, len(s.pendingConnections))
	for uri := range s.pendingConnections {
		existingPending[uri] = true
	}
	s.pendingMu.Unlock()

	for _, link := range staleLinks {
		link.Close()
	}
	for _, pc := range stalePending {
		pc.cancel()
	}

	for uri := range wanted {
		if existingLinks[uri] || existingPending[uri] {
			continue
		}
		s.NegotiateConnection(uri, false)
	}
}

// NegotiateConnection creates a PendingConnection for uri and registers
// it with the RPC dispatch. Returns true once the request has been
// dispatched (not once negotiation succeeds). If block is true, it
// waits until a result has been delivered to the pending connection or
// the attempt is cancelled; it does not wait for Check to process that
// result.
func (s *Subscription) NegotiateConnection(uri string, block bool) bool {
	if s.dropped.Load() {
		return false
	}

	s.linksMu.Lock()
	_, hasLink := s.publisherLinks[uri]
	s.linksMu.Unlock()

	s.pendingMu.Lock()
	if hasLink {
		s.pendingMu.Unlock()
		return false
	}
	if _, exists := s.pendingConnections[uri]; exists {
		s.pendingMu.Unlock()
		return false
	}

	nonce, _ := negotiate.NewNonce()
	offer := tcpros.Offer{
		AttemptID:       uuid.NewString(),
		Topic:           s.Topic,
		MD5Sum:          s.MD5Sum,
		Type:            s.DataType,
		CallerID:        s.opts.CallerID,
		Transport:       tcpros.TransportTCP,
		ProtocolVersion: 1,
		Nonce:           nonce,
	}
	pc := newPendingConnection(s, uri, offer)
	s.pendingConnections[uri] = pc
	s.pendingMu.Unlock()

	pc.AddToDispatch(s.opts.Dispatcher)

	if block {
		pc.Wait()
	}
	return true
}

// PendingConnectionDone interprets an RPC negotiation result. On
// accept, it verifies the publisher's advertised schema, constructs the
// appropriate PublisherLink, and inserts it into publisher_links; on
// reject, mismatch, or error, it discards. In all cases pc is removed
// from pending_connections.
func (s *Subscription) PendingConnectionDone(pc *PendingConnection, result tcpros.Result) {
	s.pendingMu.Lock()
	delete(s.pendingConnections, pc.URI())
	s.pendingMu.Unlock()

	if !result.Accepted {
		s.logger.Log(negotiationEvent(pc.AttemptID(), false, result.Reason))
		s.scheduleRetry(pc.URI())
		return
	}

	hdr := tcpros.HeaderFromFields(result.Header)
	if hdr.MD5Sum != "" && hdr.MD5Sum != s.MD5Sum {
		s.logger.Log(errorEvent(log.LayerNegotiation, ErrSchemaMismatch.Error(), pc.URI()))
		s.scheduleRetry(pc.URI())
		return
	}

	link, err := s.makeLink(pc, result)
	if err != nil {
		s.logger.Log(errorEvent(log.LayerTransport, err.Error(), pc.URI()))
		s.scheduleRetry(pc.URI())
		return
	}

	s.linksMu.Lock()
	s.publisherLinks[pc.URI()] = link
	s.linksMu.Unlock()

	s.backoffMu.Lock()
	delete(s.backoffs, pc.URI())
	s.backoffMu.Unlock()

	s.logger.Log(negotiationEvent(pc.AttemptID(), true, ""))
	link.start()
}

// scheduleRetry re-offers uri for negotiation after uri's backoff delay,
// which grows with each consecutive reject, mismatch, or link failure.
// PubUpdate does not consult this backoff: a later pub_update that still
// lists uri re-offers it at once if it has no link or pending attempt.
// The retry only fires if uri is still in the most recent wanted set;
// a publisher dropped from a later pub_update is not resurrected.
func (s *Subscription) scheduleRetry(uri string) {
	s.backoffMu.Lock()
	b, ok := s.backoffs[uri]
	if !ok {
		b = connection.NewBackoff()
		s.backoffs[uri] = b
	}
	delay := b.Next()
	s.backoffMu.Unlock()

	time.AfterFunc(delay, func() { s.retryNegotiation(uri) })
}

func (s *Subscription) retryNegotiation(uri string) {
	if s.dropped.Load() {
		return
	}
	s.wantedMu.RLock()
	wanted := s.wantedPubs[uri]
	s.wantedMu.RUnlock()
	if !wanted {
		return
	}
	s.NegotiateConnection(uri, false)
}

// makeLink dials the transport result.Addr describes and wraps it in a
// PublisherLink. When the subscription is configured for encryption
// and a nonce came back from negotiation, it derives this link's
// session key from the offer's nonce and the result's supplementing
// nonce before the link's read loop is allowed to start.
func (s *Subscription) makeLink(pc *PendingConnection, result tcpros.Result) (*PublisherLink, error) {
	uri := pc.URI()
	addr := result.Addr
	var t transport.Transport
	var err error
	if result.Transport == tcpros.TransportUDP {
		t, err = s.opts.LinkFactory.MakeDatagramLink(addr)
	} else {
		t, err = s.opts.LinkFactory.MakeStreamLink(addr)
	}
	if err != nil {
		return nil, err
	}

	framer, err := s.sessionFramer(pc, result)
	if err != nil {
		t.Close()
		return nil, err
	}

	connID := uuid.NewString()
	return newPublisherLink(s, uri, connID, result.Transport.String(), result.Header, t, framer), nil
}

// sessionFramer derives this link's AEAD framer when encryption was
// requested for the dial and negotiation actually exchanged nonce
// material. Returns a nil framer, not an error, when encryption isn't
// in play, so plaintext links are unaffected.
func (s *Subscription) sessionFramer(pc *PendingConnection, result tcpros.Result) (*negotiate.Framer, error) {
	if !s.opts.DialOpts.Encrypt || len(s.opts.NodeSecretKey) == 0 {
		return nil, nil
	}
	nonce := append(append([]byte(nil), pc.offer.Nonce...), result.Nonce...)
	if len(nonce) == 0 {
		return nil, negotiate.ErrDerivationFailed
	}
	key, err := negotiate.DeriveSessionKey(s.opts.NodeSecretKey, nonce, s.Topic)
	if err != nil {
		return nil, err
	}
	return negotiate.NewFramer(key)
}

// RemovePublisherLink removes link from publisher_links, if it is still
// the current link for its URI. Called by a link's read loop on
// transport error, or by Drop.
func (s *Subscription) RemovePublisherLink(link *PublisherLink) {
	s.linksMu.Lock()
	if cur, ok := s.publisherLinks[link.URI()]; ok && cur == link {
		delete(s.publisherLinks, link.URI())
	}
	s.linksMu.Unlock()
}

// HandleMessage is the hot path: a PublisherLink delivers a complete
// frame here. In unthreaded mode it invokes callbacks inline; in
// threaded mode it enqueues into the bounded inbox, dropping the oldest
// entry on overflow. Returns false only once the subscription has been
// dropped.
func (s *Subscription) HandleMessage(link *PublisherLink, bytes []byte, hdr map[string]string) bool {
	if s.dropped.Load() {
		return false
	}

	s.stats.BytesReceived.Add(uint64(len(bytes)))
	s.stats.MessagesReceived.Add(1)

	if !s.opts.Threaded {
		s.invokeCallback(bytes, hdr)
		return true
	}

	s.inboxMu.Lock()
	if s.opts.MaxQueue > 0 && len(s.inbox) == s.opts.MaxQueue {
		s.inbox = s.inbox[1:]
		s.stats.QueueFull.Add(1)
	}
	s.inbox = append(s.inbox, inboxEntry{bytes: bytes, hdr: hdr, link: link})
	s.inboxMu.Unlock()
	s.inboxCond.Signal()
	return true
}

// invokeCallback dispatches one message to every registered callback,
// under a snapshot of the callback list so delivery never blocks
// concurrent AddCallback/RemoveCallback calls.
func (s *Subscription) invokeCallback(bytes []byte, hdr map[string]string) {
	s.callbacksMu.RLock()
	infos := make([]*CallbackInfo, len(s.callbacks))
	copy(infos, s.callbacks)
	s.callbacksMu.RUnlock()

	for _, ci := range infos {
		if ci.queue == nil {
			if ci.tracked != nil && !ci.tracked.Alive() {
				continue
			}
			if err := ci.invoke(bytes, hdr); err != nil {
				s.logger.Log(errorEvent(log.LayerSubscription, err.Error(), s.Topic))
			}
			continue
		}
		ci.queue.AddCallback(&deserializingCallback{info: ci, bytes: bytes, hdr: hdr})
	}
}

func (s *Subscription) startWorkerOnce() {
	s.inboxMu.Lock()
	if s.workerStarted {
		s.inboxMu.Unlock()
		return
	}
	s.workerStarted = true
	s.workerDone = make(chan struct{})
	s.inboxMu.Unlock()
	go s.workerLoop()
}

// workerLoop waits on inboxCond until the inbox is non-empty or the
// subscription is dropped; it dequeues one entry, releases the lock,
// then calls invokeCallback. It exits once dropped and the inbox is
// drained.
func (s *Subscription) workerLoop() {
	defer close(s.workerDone)
	for {
		s.inboxMu.Lock()
		for len(s.inbox) == 0 && !s.dropped.Load() {
			s.inboxCond.Wait()
		}
		if len(s.inbox) == 0 && s.dropped.Load() {
			s.inboxMu.Unlock()
			return
		}
		entry := s.inbox[0]
		s.inbox = s.inbox[1:]
		s.inboxMu.Unlock()

		s.invokeCallback(entry.bytes, entry.hdr)
	}
}

// Drop is idempotent: it sets dropped, drops every PublisherLink,
// cancels every PendingConnection, and wakes the worker.
func (s *Subscription) Drop() {
	if !s.dropped.CompareAndSwap(false, true) {
		return
	}

	s.linksMu.Lock()
	links := make([]*PublisherLink, 0, len(s.publisherLinks))
	for uri, l := range s.publisherLinks {
		links = append(links, l)
		delete(s.publisherLinks, uri)
	}
	s.linksMu.Unlock()
	for _, l := range links {
		l.Close()
	}

	s.pendingMu.Lock()
	pcs := make([]*PendingConnection, 0, len(s.pendingConnections))
	for uri, pc := range s.pendingConnections {
		pcs = append(pcs, pc)
		delete(s.pendingConnections, uri)
	}
	s.pendingMu.Unlock()
	for _, pc := range pcs {
		pc.cancel()
	}

	s.inboxMu.Lock()
	s.inboxCond.Broadcast()
	s.inboxMu.Unlock()
}

// Shutdown is Drop plus a bounded join of the worker goroutine.
func (s *Subscription) Shutdown() {
	s.shuttingDown.Store(true)
	s.Drop()

	s.inboxMu.Lock()
	started := s.workerStarted
	done := s.workerDone
	s.inboxMu.Unlock()
	if started {
		<-done
	}
}

// GetStats returns a snapshot of this subscription's traffic counters
// and current connection set.
func (s *Subscription) GetStats() stats.Snapshot {
	s.linksMu.Lock()
	conns := make([]stats.ConnectionInfo, 0, len(s.publisherLinks))
	for uri, l := range s.publisherLinks {
		conns = append(conns, stats.ConnectionInfo{
			ConnectionID: l.connectionID,
			Destination:  uri,
			Direction:    "in",
			Transport:    l.transportKind,
			Active:       true,
		})
	}
	s.linksMu.Unlock()

	s.statsMu.Lock()
	s.stats.Connections = conns
	snap := s.stats.Snapshot()
	s.statsMu.Unlock()
	return snap
}

// GetInfo returns the connection list, the subset of GetStats used by
// introspection tools that only need connection identity, not traffic
// counters.
func (s *Subscription) GetInfo() []stats.ConnectionInfo {
	return s.GetStats().Connections
}

func negotiationEvent(attemptID string, accepted bool, reason string) log.Event {
	return log.Event{
		Layer:    log.LayerNegotiation,
		Category: log.CategoryNegotiation,
		Negotiation: &log.NegotiationEvent{
			AttemptID: attemptID,
			Accepted:  accepted,
			Reason:    reason,
		},
	}
}

func errorEvent(layer log.Layer, message, context string) log.Event {
	return log.Event{
		Layer:    layer,
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   layer,
			Message: message,
			Context: context,
		},
	}
}
