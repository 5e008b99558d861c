// Package sse streams dataset changes to organizers as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/okian/matchboard/pkg/metrics"
)

// DefaultThrottle is the coalescing window when none is configured.
const DefaultThrottle = 250 * time.Millisecond

const (
	clientBuffer  = 64
	publishBuffer = 256
)

// Event is one message to broadcast.
type Event struct {
	Type string
	Data any
}

// Broker fans events out to connected clients.
//
// A single loop goroutine owns the client set and the coalescing state.
// Public methods talk to it over channels.
type Broker struct {
	throttle time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	coalesceCh    chan Event
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker. Coalesced events are held for one throttle
// window after the first arrives; the latest payload per type wins.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = DefaultThrottle
	}
	b := &Broker{
		throttle:      throttle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, publishBuffer),
		coalesceCh:    make(chan Event, publishBuffer),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var seq uint64

	pending := make(map[string]Event)
	order := []string{}
	var (
		timer  *time.Timer
		flushC <-chan time.Time
	)

	broadcast := func(ev Event) {
		payload, err := json.Marshal(ev.Data)
		if err != nil {
			return
		}
		seq++
		raw := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, ev.Type, payload))
		metrics.RecordSSEEvent(ev.Type)
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than block the loop.
			}
		}
	}

	flush := func() {
		for _, typ := range order {
			broadcast(pending[typ])
			delete(pending, typ)
		}
		order = order[:0]
		timer, flushC = nil, nil
	}

	for {
		select {
		case <-b.stopCh:
			if timer != nil {
				timer.Stop()
			}
			for ch := range clients {
				close(ch)
			}
			metrics.UpdateSSESubscribers(0)
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}
			metrics.UpdateSSESubscribers(len(clients))

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
				metrics.UpdateSSESubscribers(len(clients))
			}

		case ev := <-b.publishCh:
			broadcast(ev)

		case ev := <-b.coalesceCh:
			if _, ok := pending[ev.Type]; !ok {
				order = append(order, ev.Type)
			}
			pending[ev.Type] = ev
			if timer == nil {
				timer = time.NewTimer(b.throttle)
				flushC = timer.C
			}

		case <-flushC:
			flush()

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the loop and closes every client channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish broadcasts an event immediately.
func (b *Broker) Publish(eventType string, data any) {
	b.send(b.publishCh, Event{Type: eventType, Data: data})
}

// Coalesce broadcasts an event within the throttle window, replacing any
// pending event of the same type.
func (b *Broker) Coalesce(eventType string, data any) {
	b.send(b.coalesceCh, Event{Type: eventType, Data: data})
}

func (b *Broker) send(ch chan Event, ev Event) {
	if b.closed.Load() {
		return
	}
	select {
	case ch <- ev:
	case <-b.stopped:
	}
}

// ServeHTTP is the stream endpoint.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
