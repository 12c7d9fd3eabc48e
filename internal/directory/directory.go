package directory

import (
	"sync"

	"github.com/chadrockey/ros/pkg/subscription"
)

// Directory tracks the set of publisher URIs advertised per topic and
// pushes reconciled updates into a Registry, standing in for the
// external directory RPC service.
type Directory struct {
	mu       sync.RWMutex
	registry *subscription.Registry
	topics   map[string][]string
}

// New constructs a Directory that reconciles against registry.
func New(registry *subscription.Registry) *Directory {
	return &Directory{
		registry: registry,
		topics:   make(map[string][]string),
	}
}

// Advertise records the current publisher set for topic and immediately
// pushes it to the matching Subscription's pub_update, if one is
// registered.
func (d *Directory) Advertise(topic string, uris []string) {
	cp := append([]string(nil), uris...)

	d.mu.Lock()
	d.topics[topic] = cp
	d.mu.Unlock()

	d.registry.PubUpdate(topic, cp)
}

// Publishers returns the last advertised publisher set for topic.
func (d *Directory) Publishers(topic string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.topics[topic]...)
}

// Topics returns every topic this Directory currently advertises; a
// topic passed to Forget is no longer listed.
func (d *Directory) Topics() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	topics := make([]string, 0, len(d.topics))
	for t := range d.topics {
		topics = append(topics, t)
	}
	return topics
}

// Forget removes a topic's advertised publisher set and reconciles the
// matching Subscription down to an empty publisher set.
func (d *Directory) Forget(topic string) {
	d.mu.Lock()
	delete(d.topics, topic)
	d.mu.Unlock()

	d.registry.PubUpdate(topic, nil)
}
