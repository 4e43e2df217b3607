package events

import "sync"

const DefaultClientBuffer = 8

// Broadcaster tracks SSE client channels per recipient and pushes short
// refresh messages to them.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[chan string]string
	buffer  int
}

func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultClientBuffer
	}
	return &Broadcaster{
		clients: make(map[chan string]string),
		buffer:  buffer,
	}
}

// Register returns a channel that receives messages for recipient.
func (b *Broadcaster) Register(recipient string) chan string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan string, b.buffer)
	b.clients[ch] = recipient
	return ch
}

func (b *Broadcaster) Unregister(ch chan string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[ch]; ok {
		delete(b.clients, ch)
		close(ch)
	}
}

// Broadcast sends message to every client of recipient without waiting.
// A client whose buffer is full is dropped.
func (b *Broadcaster) Broadcast(recipient, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch, r := range b.clients {
		if r != recipient {
			continue
		}
		select {
		case ch <- message:
		default:
			delete(b.clients, ch)
			close(ch)
		}
	}
}

func (b *Broadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}
