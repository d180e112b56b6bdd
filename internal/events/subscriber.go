package events

// Subscriber receives session events from the event bus.
type Subscriber interface {
	// Subscribe delivers decoded envelopes on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan *SessionEvent, func(), error)
	Close() error
}
