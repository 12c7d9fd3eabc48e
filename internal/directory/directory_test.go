package directory

import (
	"testing"

	"github.com/chadrockey/ros/pkg/subscription"
)

func TestAdvertisePushesPubUpdate(t *testing.T) {
	registry := subscription.NewRegistry()
	sub := registry.GetOrCreate("/chatter", "abc123", "std_msgs/String", subscription.DefaultOptions())
	t.Cleanup(func() { registry.ClearAll() })

	dir := New(registry)
	dir.Advertise("/chatter", []string{"http://a/", "http://b/"})

	info := sub.GetInfo()
	if len(info) != 0 {
		t.Fatalf("expected no promoted links yet (negotiation not driven in this test), got %d", len(info))
	}

	got := dir.Publishers("/chatter")
	if len(got) != 2 || got[0] != "http://a/" || got[1] != "http://b/" {
		t.Fatalf("Publishers = %v, want [http://a/ http://b/]", got)
	}
}

func TestForgetClearsPublishers(t *testing.T) {
	registry := subscription.NewRegistry()
	registry.GetOrCreate("/chatter", "abc123", "std_msgs/String", subscription.DefaultOptions())
	t.Cleanup(func() { registry.ClearAll() })

	dir := New(registry)
	dir.Advertise("/chatter", []string{"http://a/"})
	dir.Forget("/chatter")

	if got := dir.Publishers("/chatter"); len(got) != 0 {
		t.Fatalf("Publishers after Forget = %v, want empty", got)
	}
}

func TestTopicsListsEveryAdvertisedTopic(t *testing.T) {
	registry := subscription.NewRegistry()
	registry.GetOrCreate("/a", "m1", "t1", subscription.DefaultOptions())
	registry.GetOrCreate("/b", "m2", "t2", subscription.DefaultOptions())
	t.Cleanup(func() { registry.ClearAll() })

	dir := New(registry)
	dir.Advertise("/a", []string{"http://x/"})
	dir.Advertise("/b", []string{"http://y/"})

	topics := dir.Topics()
	if len(topics) != 2 {
		t.Fatalf("Topics = %v, want 2 entries", topics)
	}
}
