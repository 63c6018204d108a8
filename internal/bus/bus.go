package bus

import (
	"encoding/json"
	"sync"

	"github.com/FermatTheorem/NoShitProxy/internal/models"
)

// subscriberBuffer bounds how far a slow consumer may lag before it starts
// missing events. Ingestion is never back-pressured by a subscriber.
const subscriberBuffer = 500

// Event is the live-stream envelope delivered to every subscriber.
type Event struct {
	Type string             `json:"type"`
	Data models.FlowSummary `json:"data"`
}

// EncodeFlowEvent renders the wire payload once, so a publish fans out the
// same bytes to every subscriber.
func EncodeFlowEvent(summary models.FlowSummary) (string, error) {
	payload, err := json.Marshal(Event{Type: "flow", Data: summary})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// Bus broadcasts stored flows to live subscribers. Delivery to each
// subscriber follows append order; a subscriber that disconnects and
// reconnects starts fresh (no replay of missed events).
type Bus struct {
	mu          sync.Mutex
	subscribers map[chan string]struct{}
}

func New() *Bus {
	return &Bus{subscribers: make(map[chan string]struct{})}
}

// Subscribe registers a live consumer. The returned cancel func must be
// called on disconnect so the bus does not accumulate dead channels.
func (b *Bus) Subscribe() (<-chan string, func()) {
	ch := make(chan string, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.subscribers, ch)
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish fans the payload out to every subscriber without blocking: a full
// buffer means that subscriber simply misses the event.
func (b *Bus) Publish(payload string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- payload:
		default:
		}
	}
}

// SubscriberCount reports the number of live subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}
