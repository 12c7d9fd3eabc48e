package log

import (
	"testing"
	"time"
)

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	logger := NoopLogger{}

	event := Event{
		Timestamp:    time.Now(),
		ConnectionID: "test-conn",
		Direction:    DirectionIn,
		Layer:        LayerTransport,
		Category:     CategoryLink,
	}

	logger.Log(event)

	event.Link = &LinkEvent{Transport: "tcp", BytesReceived: 100}
	logger.Log(event)

	event.Link = nil
	event.Negotiation = &NegotiationEvent{AttemptID: "a1", Accepted: true}
	logger.Log(event)

	event.Negotiation = nil
	event.StateChange = &StateChangeEvent{Entity: StateEntityLink, NewState: "connected"}
	logger.Log(event)

	event.StateChange = nil
	event.Timer = &TimerEvent{MissedTicks: 1}
	logger.Log(event)

	event.Timer = nil
	event.Error = &ErrorEventData{Message: "test error"}
	logger.Log(event)
}

func TestLoggerInterfaceSatisfaction(t *testing.T) {
	var _ Logger = NoopLogger{}
	var _ Logger = &NoopLogger{}
}

func TestNoopLoggerIsZeroValue(t *testing.T) {
	var logger NoopLogger
	logger.Log(Event{})
}
