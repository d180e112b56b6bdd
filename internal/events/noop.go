package events

import "context"

// NoopPublisher discards events (used when NATS is not configured).
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, event *SessionEvent) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}
