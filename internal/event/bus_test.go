package event

import (
	"testing"
)

func TestBusPublishOrder(t *testing.T) {
	bus := NewBus()
	var order []string

	_, _ = bus.Subscribe(func(BufferEvent) { order = append(order, "normal-1") })
	_, _ = bus.Subscribe(func(BufferEvent) { order = append(order, "low") }, WithPriority(PriorityLow))
	_, _ = bus.Subscribe(func(BufferEvent) { order = append(order, "critical") }, WithPriority(PriorityCritical))
	_, _ = bus.Subscribe(func(BufferEvent) { order = append(order, "normal-2") })

	bus.Publish(BufferEvent{Kind: TextInserted, Start: 0, End: 1})

	want := []string{"critical", "normal-1", "normal-2", "low"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestBusKindFilter(t *testing.T) {
	bus := NewBus()
	var got []Kind

	_, err := bus.Subscribe(func(e BufferEvent) { got = append(got, e.Kind) }, WithKinds(TextDeleted, Loaded))
	if err != nil {
		t.Fatal(err)
	}

	bus.Publish(BufferEvent{Kind: PreChange})
	bus.Publish(BufferEvent{Kind: TextDeleted})
	bus.Publish(BufferEvent{Kind: TextInserted})
	bus.Publish(BufferEvent{Kind: Loaded})

	if len(got) != 2 || got[0] != TextDeleted || got[1] != Loaded {
		t.Errorf("got = %v, want [deleted loaded]", got)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	sub, _ := bus.Subscribe(func(BufferEvent) { calls++ })

	if sub.ID() == "" {
		t.Error("subscription should have an ID")
	}

	bus.Publish(BufferEvent{Kind: TextChanged})
	if err := bus.Unsubscribe(sub); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	bus.Publish(BufferEvent{Kind: TextChanged})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if sub.IsActive() {
		t.Error("subscription should be inactive")
	}
	if err := bus.Unsubscribe(sub); err != ErrSubscriptionNotFound {
		t.Errorf("second Unsubscribe() = %v, want ErrSubscriptionNotFound", err)
	}
}

func TestBusNilHandler(t *testing.T) {
	if _, err := NewBus().Subscribe(nil); err != ErrNilHandler {
		t.Errorf("Subscribe(nil) = %v, want ErrNilHandler", err)
	}
}

func TestBusStats(t *testing.T) {
	bus := NewBus()
	_, _ = bus.Subscribe(func(BufferEvent) {})
	_, _ = bus.Subscribe(func(BufferEvent) {}, WithKinds(Loaded))

	bus.Publish(BufferEvent{Kind: PreChange})

	stats := bus.Stats()
	if stats.EventsPublished != 1 || stats.HandlersExecuted != 1 || stats.ActiveSubscribers != 2 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestKindTopics(t *testing.T) {
	tests := []struct {
		k     Kind
		topic string
		name  string
	}{
		{PreChange, "buffer.change.pending", "pre-change"},
		{TextDeleted, "buffer.content.deleted", "deleted"},
		{TextInserted, "buffer.content.inserted", "inserted"},
		{Loaded, "buffer.loaded", "loaded"},
		{TextChanged, "buffer.content.changed", "changed"},
	}
	for _, tt := range tests {
		if tt.k.Topic() != tt.topic {
			t.Errorf("%v.Topic() = %q, want %q", tt.k, tt.k.Topic(), tt.topic)
		}
		if tt.k.String() != tt.name {
			t.Errorf("String() = %q, want %q", tt.k.String(), tt.name)
		}
	}

	e := BufferEvent{Kind: TextInserted, Start: 3, End: 7}
	if e.String() != "inserted[3,7)" || e.Len() != 4 {
		t.Errorf("event = %s len %d", e, e.Len())
	}
}
