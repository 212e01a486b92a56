package events

import (
	"sync"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan SessionOpenedEvent, 1)

	unsub := bus.Subscribe(func(e SessionOpenedEvent) {
		received <- e
	})
	defer unsub()

	ev := SessionOpenedEvent{
		SessionID:  7,
		Category:   "voice",
		UseCase:    "Voice Call",
		SampleRate: 8000,
		Timestamp:  "2025-01-27T10:30:00Z",
	}
	bus.Publish(ev)

	got := <-received
	if got.SessionID != ev.SessionID || got.UseCase != ev.UseCase {
		t.Errorf("Expected %+v, got %+v", ev, got)
	}
}

func TestBus_MultipleSubscribers(_ *testing.T) {
	bus := New()
	received1 := make(chan CallStateChangedEvent, 1)
	received2 := make(chan CallStateChangedEvent, 1)

	unsub1 := bus.Subscribe(func(e CallStateChangedEvent) {
		received1 <- e
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(e CallStateChangedEvent) {
		received2 <- e
	})
	defer unsub2()

	bus.Publish(CallStateChangedEvent{Active: true})

	<-received1
	<-received2
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan FMStateChangedEvent, 1)

	unsub := bus.Subscribe(func(e FMStateChangedEvent) {
		received <- e
	})

	bus.Publish(FMStateChangedEvent{Active: true})
	<-received

	unsub()

	bus.Publish(FMStateChangedEvent{Active: false})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
		// Expected - no event
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	routeReceived := make(chan bool, 1)
	accessoryReceived := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ RouteAppliedEvent) {
		routeReceived <- true
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(_ AccessoryChangedEvent) {
		accessoryReceived <- true
	})
	defer unsub2()

	bus.Publish(RouteAppliedEvent{Devices: 0x2})
	<-routeReceived

	select {
	case <-accessoryReceived:
		t.Fatal("Accessory subscriber should NOT have received RouteAppliedEvent")
	case <-time.After(10 * time.Millisecond):
	}

	bus.Publish(AccessoryChangedEvent{Name: "anc", Value: "true"})
	<-accessoryReceived

	select {
	case <-routeReceived:
		t.Fatal("Route subscriber should NOT have received AccessoryChangedEvent")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBus_ThreadSafety(_ *testing.T) {
	bus := New()
	var wg sync.WaitGroup
	numGoroutines := 10
	eventsPerGoroutine := 100
	expected := numGoroutines * eventsPerGoroutine

	receivedCh := make(chan bool, expected)

	unsub := bus.Subscribe(func(_ RouteAppliedEvent) {
		receivedCh <- true
	})
	defer unsub()

	for range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range eventsPerGoroutine {
				bus.Publish(RouteAppliedEvent{
					Mode:      "normal",
					Timestamp: time.Now().Format(time.RFC3339),
				})
			}
		}()
	}

	wg.Wait()

	for range expected {
		<-receivedCh
	}
}

func TestBus_AllEventTypes(t *testing.T) {
	bus := New()

	tests := []struct {
		name  string
		event Event
	}{
		{"RouteApplied", RouteAppliedEvent{Devices: 1}},
		{"SessionOpened", SessionOpenedEvent{SessionID: 1}},
		{"SessionClosed", SessionClosedEvent{SessionID: 1}},
		{"CallStateChanged", CallStateChangedEvent{Active: true}},
		{"FMStateChanged", FMStateChangedEvent{Active: true}},
		{"ModeChanged", ModeChangedEvent{Mode: "in_call"}},
		{"AccessoryChanged", AccessoryChangedEvent{Name: "tty_mode"}},
		{"SequencerFailed", SequencerFailedEvent{Operation: "enable"}},
		{"TransportFailed", TransportFailedEvent{Operation: "open"}},
		{"LogEntry", LogEntryEvent{Module: "routing"}},
		{"CardChanged", CardChangedEvent{Action: "add", Card: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			received := make(chan Event, 1)

			var unsub func()
			switch tt.event.(type) {
			case RouteAppliedEvent:
				unsub = bus.Subscribe(func(e RouteAppliedEvent) { received <- e })
			case SessionOpenedEvent:
				unsub = bus.Subscribe(func(e SessionOpenedEvent) { received <- e })
			case SessionClosedEvent:
				unsub = bus.Subscribe(func(e SessionClosedEvent) { received <- e })
			case CallStateChangedEvent:
				unsub = bus.Subscribe(func(e CallStateChangedEvent) { received <- e })
			case FMStateChangedEvent:
				unsub = bus.Subscribe(func(e FMStateChangedEvent) { received <- e })
			case ModeChangedEvent:
				unsub = bus.Subscribe(func(e ModeChangedEvent) { received <- e })
			case AccessoryChangedEvent:
				unsub = bus.Subscribe(func(e AccessoryChangedEvent) { received <- e })
			case SequencerFailedEvent:
				unsub = bus.Subscribe(func(e SequencerFailedEvent) { received <- e })
			case TransportFailedEvent:
				unsub = bus.Subscribe(func(e TransportFailedEvent) { received <- e })
			case LogEntryEvent:
				unsub = bus.Subscribe(func(e LogEntryEvent) { received <- e })
			case CardChangedEvent:
				unsub = bus.Subscribe(func(e CardChangedEvent) { received <- e })
			}
			defer unsub()

			bus.Publish(tt.event)

			select {
			case got := <-received:
				if got.Type() != tt.event.Type() {
					t.Errorf("got type %d, want %d", got.Type(), tt.event.Type())
				}
			case <-time.After(time.Second):
				t.Fatal("timeout waiting for event")
			}
		})
	}
}

func TestBus_UnknownHandler(_ *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(string) {})
	unsub()
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan any, 10)

	unsub := SubscribeToChannel[SessionClosedEvent](bus, ch)
	defer unsub()

	bus.Publish(SessionClosedEvent{SessionID: 4, Reason: "closed"})

	received := <-ch
	closed, ok := received.(SessionClosedEvent)
	if !ok {
		t.Fatalf("Expected SessionClosedEvent, got %T", received)
	}
	if closed.SessionID != 4 {
		t.Errorf("Expected session 4, got %d", closed.SessionID)
	}
}

func TestSubscribeToChannel_NonBlocking(_ *testing.T) {
	bus := New()
	ch := make(chan any)

	unsub := SubscribeToChannel[ModeChangedEvent](bus, ch)
	defer unsub()

	done := make(chan bool, 1)
	go func() {
		bus.Publish(ModeChangedEvent{Mode: "in_call"})
		done <- true
	}()

	<-done
}
