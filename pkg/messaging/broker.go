package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// AlarmChannel returns the per-scope pub/sub channel carrying alarm
// delivery events for one account namespace.
func AlarmChannel(scope string) string {
	return "mediiq:alarms:" + scope
}

// EventChannel is the broker channel for general domain events drained
// from the outbox.
const EventChannel = "mediiq:events"
