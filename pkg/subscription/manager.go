package subscription

import "sync"

// Registry indexes a node's active Subscriptions by topic name, the
// role the original runtime's per-node subscription table plays: one
// Subscription per topic, shared by every local callback registered
// against that topic.
type Registry struct {
	mu      sync.RWMutex
	byTopic map[string]*Subscription
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byTopic: make(map[string]*Subscription)}
}

// GetOrCreate returns the Subscription already registered for topic, or
// constructs one via New and registers it. md5sum/dataType/opts are
// only consulted on the creating call; a later GetOrCreate for the same
// topic returns the existing Subscription unchanged.
func (r *Registry) GetOrCreate(topic, md5sum, dataType string, opts Options) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub, ok := r.byTopic[topic]; ok {
		return sub
	}
	sub := New(topic, md5sum, dataType, opts)
	r.byTopic[topic] = sub
	return sub
}

// Get returns the Subscription registered for topic, if any.
func (r *Registry) Get(topic string) (*Subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.byTopic[topic]
	return sub, ok
}

// Unsubscribe removes and shuts down the Subscription registered for
// topic. A no-op if topic has no registered Subscription.
func (r *Registry) Unsubscribe(topic string) {
	r.mu.Lock()
	sub, ok := r.byTopic[topic]
	delete(r.byTopic, topic)
	r.mu.Unlock()
	if ok {
		sub.Shutdown()
	}
}

// PubUpdate forwards a directory publisher-list update to the
// Subscription registered for topic. A no-op if topic is not
// registered, mirroring the original runtime's tolerance of stale
// directory callbacks racing an unsubscribe.
func (r *Registry) PubUpdate(topic string, pubs []string) {
	r.mu.RLock()
	sub, ok := r.byTopic[topic]
	r.mu.RUnlock()
	if ok {
		sub.PubUpdate(pubs)
	}
}

// Topics returns the currently registered topic names, in no
// particular order.
func (r *Registry) Topics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	topics := make([]string, 0, len(r.byTopic))
	for t := range r.byTopic {
		topics = append(topics, t)
	}
	return topics
}

// ClearAll shuts down every registered Subscription and empties the
// registry, used on node shutdown.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	subs := make([]*Subscription, 0, len(r.byTopic))
	for _, sub := range r.byTopic {
		subs = append(subs, sub)
	}
	r.byTopic = make(map[string]*Subscription)
	r.mu.Unlock()

	for _, sub := range subs {
		sub.Shutdown()
	}
}

// Count returns the number of registered subscriptions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byTopic)
}
