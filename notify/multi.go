package notify

import "sync"

// MultiNotifier fans events out to multiple notifiers.
type MultiNotifier struct {
	Notifiers []Notifier
}

// NewMultiNotifier creates a notifier that delivers to every sink.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{Notifiers: notifiers}
}

// Notify implements Notifier.
func (n *MultiNotifier) Notify(event Event) {
	for _, notifier := range n.Notifiers {
		notifier.Notify(event)
	}
}

// ChannelNotifier delivers events to a buffered channel, the hook a UI
// event loop subscribes on. When the buffer is full the oldest event is
// dropped so the orchestration path never blocks.
type ChannelNotifier struct {
	mu     sync.Mutex
	events chan Event
}

// NewChannelNotifier creates a channel-backed notifier with the given
// buffer size (minimum 1).
func NewChannelNotifier(buffer int) *ChannelNotifier {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelNotifier{events: make(chan Event, buffer)}
}

// Events is the subscription channel.
func (n *ChannelNotifier) Events() <-chan Event {
	return n.events
}

// Notify implements Notifier.
func (n *ChannelNotifier) Notify(event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for {
		select {
		case n.events <- event:
			return
		default:
			// Buffer full: drop the oldest and retry.
			select {
			case <-n.events:
			default:
			}
		}
	}
}
